package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Floor is a skill tier. Values are ordinal, so floors compare with < and >.
type Floor uint8

const (
	F1 Floor = iota + 1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	Celestial
)

const (
	MinFloor = F1
	MaxFloor = Celestial
)

// https://github.com/optix2000/totsugeki/issues/35#issuecomment-922516535
var floorBytes = map[Floor]byte{
	F1:        0x00,
	F2:        0x01,
	F3:        0x02,
	F4:        0x03,
	F5:        0x04,
	F6:        0x05,
	F7:        0x06,
	F8:        0x07,
	F9:        0x08,
	F10:       0x09,
	Celestial: 0x63,
}

var floorsByByte = func() map[byte]Floor {
	m := make(map[byte]Floor, len(floorBytes))
	for f, b := range floorBytes {
		m[b] = f
	}
	return m
}()

func FloorFromByte(b byte) (Floor, error) {
	f, ok := floorsByByte[b]
	if !ok {
		return 0, fmt.Errorf("%w: floor byte 0x%02x", ErrUnrecognizedValue, b)
	}
	return f, nil
}

func (f Floor) Byte() byte {
	return floorBytes[f]
}

func (f Floor) Valid() bool {
	_, ok := floorBytes[f]
	return ok
}

func (f Floor) String() string {
	switch {
	case f == Celestial:
		return "Celestial"
	case f >= F1 && f <= F10:
		return fmt.Sprintf("F%d", uint8(f))
	default:
		return fmt.Sprintf("Floor(%d)", uint8(f))
	}
}

// ParseFloor accepts "F1".."F10" (or a bare "1".."10") and "Celestial", case-insensitive.
func ParseFloor(s string) (Floor, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "celestial" || s == "c" {
		return Celestial, nil
	}
	s = strings.TrimPrefix(s, "f")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown floor %q", ErrInvalidParameters, s)
	}
	if n < 1 || n > 10 {
		return 0, fmt.Errorf("%w: floor %d out of range", ErrInvalidParameters, n)
	}
	return Floor(n), nil
}
