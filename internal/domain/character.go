package domain

import (
	"fmt"
	"strings"
)

// Character is a playable character. The numeric value is the wire byte.
type Character uint8

const (
	Sol Character = iota
	Ky
	May
	Axl
	Chipp
	Potemkin
	Faust
	Millia
	Zato
	Ramlethal
	Leo
	Nagoriyuki
	Giovanna
	Anji
	Ino
	Goldlewis
	Jacko
	HappyChaos
)

type characterInfo struct {
	code string
	name string
}

var roster = map[Character]characterInfo{
	Sol:        {"SOL", "Sol Badguy"},
	Ky:         {"KYK", "Ky Kiske"},
	May:        {"MAY", "May"},
	Axl:        {"AXL", "Axl Low"},
	Chipp:      {"CHP", "Chipp Zanuff"},
	Potemkin:   {"POT", "Potemkin"},
	Faust:      {"FAU", "Faust"},
	Millia:     {"MLL", "Millia Rage"},
	Zato:       {"ZAT", "Zato=1"},
	Ramlethal:  {"RAM", "Ramlethal Valentine"},
	Leo:        {"LEO", "Leo Whitefang"},
	Nagoriyuki: {"NAG", "Nagoriyuki"},
	Giovanna:   {"GIO", "Giovanna"},
	Anji:       {"ANJ", "Anji Mito"},
	Ino:        {"INO", "I-no"},
	Goldlewis:  {"GLD", "Goldlewis Dickinson"},
	Jacko:      {"JKO", "Jack-o"},
	HappyChaos: {"COS", "Happy Chaos"},
}

var charactersByCode = func() map[string]Character {
	m := make(map[string]Character, len(roster))
	for c, info := range roster {
		m[info.code] = c
	}
	return m
}()

// CharacterFromByte never falls back to a default; a byte outside the roster
// is reported so that new characters show up as errors instead of as someone else.
func CharacterFromByte(b byte) (Character, error) {
	c := Character(b)
	if _, ok := roster[c]; !ok {
		return 0, fmt.Errorf("%w: character byte 0x%02x", ErrUnrecognizedValue, b)
	}
	return c, nil
}

func CharacterFromCode(code string) (Character, error) {
	c, ok := charactersByCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a valid character code", ErrInvalidParameters, code)
	}
	return c, nil
}

func (c Character) Byte() byte {
	return byte(c)
}

func (c Character) Valid() bool {
	_, ok := roster[c]
	return ok
}

func (c Character) Code() string {
	if info, ok := roster[c]; ok {
		return info.code
	}
	return "???"
}

func (c Character) String() string {
	if info, ok := roster[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Character(0x%02x)", uint8(c))
}
