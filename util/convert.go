package util

import (
	"fmt"

	"github.com/vmihailenco/msgpack"
)

func ToBytes[T any](obj T) ([]byte, error) {
	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("error encoding %T: %w", obj, err)
	}

	return data, nil
}

func ToStruct[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("error decoding %T: %w", res, err)
	}

	return res, nil
}
