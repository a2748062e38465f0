package models

import (
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"reflect"
)

/**
decode a generic map (a parsed json payload) into one of our typed structs.
The hook below covers the one conversion the queue and dispatch payloads
need that mapstructure does not do natively: job id strings become uuid
values, with a real parse error instead of a silent zero value.
*/
func CustomisedMapStructureDecode(incoming interface{}, outgoing interface{}) error {
	decoder, setupErr := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: uuidDecodeHook,
		Result:     outgoing,
	})
	if setupErr != nil {
		return setupErr
	}
	return decoder.Decode(incoming)
}

func uuidDecodeHook(inType reflect.Type, outType reflect.Type, value interface{}) (interface{}, error) {
	if inType.Kind() == reflect.String && outType == reflect.TypeOf(uuid.UUID{}) {
		return uuid.Parse(value.(string))
	}
	return value, nil
}
