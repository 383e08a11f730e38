// Package token implements the token alphabet of spec §4.1 and the
// generic writer/reader plumbing ("Token Writer & Reader", spec §2 item 3)
// that every higher-level component (scalar, delta, column, frame) builds on.
//
// A token is one classification byte, optionally followed by a payload whose
// shape is fixed by the tag. Dictionary references are single-byte tokens
// whose tag ranges are packed into the low 8 bits of the first byte so a
// 6-bit dictionary index fits directly (spec §4.2).
package token

// Tag is the classifying first byte of a token.
type Tag = byte

// Dictionary reference ranges (spec §4.1).
const (
	FieldDictBase  Tag = 0x00
	FieldDictEnd   Tag = 0x3F
	StringDictBase Tag = 0x40
	StringDictEnd  Tag = 0x7F
	MacDictBase    Tag = 0x80
	MacDictEnd     Tag = 0xBF
)

// Literal and structural tokens (spec §4.1).
const (
	Int           Tag = 0xC0
	Float16       Tag = 0xC1
	Float32       Tag = 0xC2
	DeltaSmallMin Tag = 0xC3 // DeltaSmallMin..DeltaSmallMax inclusive encode delta -8..+7
	DeltaSmallMax Tag = 0xD2
	DeltaLarge    Tag = 0xD3
	NewString     Tag = 0xD4
	NewField      Tag = 0xD5
	NewMac        Tag = 0xD6
	BoolTrue      Tag = 0xD7
	BoolFalse     Tag = 0xD8
	Null          Tag = 0xD9
	ArrayStart    Tag = 0xDA
	ArrayEnd      Tag = 0xDB
	ObjectStart   Tag = 0xDC
	ObjectEnd     Tag = 0xDD
	Double        Tag = 0xDE
	Binary        Tag = 0xDF

	RLERepeat    Tag = 0xE5
	DeltaZero    Tag = 0xE6
	DeltaOne     Tag = 0xE7
	DeltaNegOne  Tag = 0xE8
	UltraBatch   Tag = 0xE9
	BitpackCol   Tag = 0xEB
	DeltaMedium  Tag = 0xEC
	RiceColumn   Tag = 0xED
	MFVColumn    Tag = 0xEE
	ArrayStream  Tag = 0xEF
	BatchPartial Tag = 0xF0
)

// MacLen is the byte length of a raw MAC address payload (spec §4.1 NEW_MAC).
const MacLen = 6

// DeltaSmallBias is the offset subtracted from a DeltaSmallMin..DeltaSmallMax
// byte (after subtracting the tag base) to recover the signed delta: byte -
// DeltaSmallMin - DeltaSmallBias == delta, i.e. delta ranges -8..+7 over the
// 16 tag values.
const DeltaSmallBias = 8

// DeltaMediumBias is the bias added to a DeltaMedium payload byte: delta =
// byte - DeltaMediumBias, covering -64..+63.
const DeltaMediumBias = 64

// IsFieldRef reports whether tag is a field-dictionary reference and returns
// its index.
func IsFieldRef(tag Tag) (index int, ok bool) {
	if tag >= FieldDictBase && tag <= FieldDictEnd {
		return int(tag - FieldDictBase), true
	}

	return 0, false
}

// IsStringRef reports whether tag is a string-dictionary reference and
// returns its index.
func IsStringRef(tag Tag) (index int, ok bool) {
	if tag >= StringDictBase && tag <= StringDictEnd {
		return int(tag - StringDictBase), true
	}

	return 0, false
}

// IsMacRef reports whether tag is a MAC-dictionary reference and returns its
// index.
func IsMacRef(tag Tag) (index int, ok bool) {
	if tag >= MacDictBase && tag <= MacDictEnd {
		return int(tag - MacDictBase), true
	}

	return 0, false
}

// IsDeltaSmall reports whether tag is an inline DELTA_SMALL token and returns
// the signed delta it carries.
func IsDeltaSmall(tag Tag) (delta int, ok bool) {
	if tag >= DeltaSmallMin && tag <= DeltaSmallMax {
		return int(tag-DeltaSmallMin) - DeltaSmallBias, true
	}

	return 0, false
}
