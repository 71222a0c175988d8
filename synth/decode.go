package synth

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeMap copies the plain map input into out, a pointer to a struct
// with mapstructure tags. Unknown keys and mistyped values are ErrInvalid
// errors. Integers convert to float fields.
func DecodeMap(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}
