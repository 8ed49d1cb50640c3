package readline

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alimpfard/readline/internal/log"
)

// KeyCode identifies a key. Codes below the Unicode limit are code points
// (1-26 being Ctrl+letter), named keys live above it so the two sets never
// collide.
type KeyCode uint32

const keyCodeNamedBase KeyCode = unicode.MaxRune + 1

const (
	KeyUnknown KeyCode = keyCodeNamedBase + iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBacktab
	KeyEscape
)

var keyNames = map[KeyCode]string{
	KeyUnknown:   "Unknown",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyRight:     "Right",
	KeyLeft:      "Left",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyF1:        "F1",
	KeyF2:        "F2",
	KeyF3:        "F3",
	KeyF4:        "F4",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
	KeyBacktab:   "Backtab",
	KeyEscape:    "Escape",
}

const (
	ModifierShift = 1
	ModifierAlt   = 2
	ModifierCtrl  = 4
)

// Key is one decoded keystroke. Ctrl+letter is carried in Code (1-26);
// Alt is the only modifier the decoder produces, Ctrl+Arrow is folded into
// Alt+Arrow.
type Key struct {
	Modifiers int
	Code      KeyCode
}

// PlainKey returns the unmodified key for code.
func PlainKey(code KeyCode) Key {
	return Key{Code: code}
}

// AltKey returns the Alt-modified variant of code.
func AltKey(code KeyCode) Key {
	return Key{Modifiers: ModifierAlt, Code: code}
}

// CtrlKey returns the control code for a letter, CtrlKey('a') == CtrlKey('A').
func CtrlKey(letter rune) Key {
	return Key{Code: ctrl(letter)}
}

func ctrl(k rune) KeyCode {
	return KeyCode(k & 0x1f)
}

// IsNamed reports whether the key is one of the named special keys.
func (k Key) IsNamed() bool {
	return k.Code >= keyCodeNamedBase
}

// IsControl reports whether the key is an unmodified Ctrl+letter code.
func (k Key) IsControl() bool {
	return k.Modifiers == 0 && k.Code >= 1 && k.Code <= 26
}

// Rune returns the code point a character key carries.
func (k Key) Rune() rune {
	if k.IsNamed() {
		return utf8.RuneError
	}
	return rune(k.Code)
}

func (k Key) isPrintable(allowUnicode bool) bool {
	if k.Modifiers != 0 || k.IsNamed() {
		return false
	}
	if k.Code >= 0x20 && k.Code < 0x7f {
		return true
	}
	return allowUnicode && k.Code >= 0x80 && unicode.IsPrint(rune(k.Code))
}

func (k Key) String() string {
	var name string
	switch {
	case k.IsNamed():
		name = keyNames[k.Code]
	case k.IsControl():
		name = "Ctrl+" + string(rune('A'+k.Code-1))
	case k.Code == 0:
		name = "NUL"
	case k.Code < 0x20 || k.Code == 0x7f:
		name = "0x" + strconv.FormatUint(uint64(k.Code), 16)
	default:
		name = string(rune(k.Code))
	}
	if k.Modifiers&ModifierAlt != 0 {
		name = "Alt+" + name
	}
	return name
}

type decoderState int

const (
	decoderStateGround decoderState = iota
	decoderStateSawEscape
	decoderStateSawCSI
	decoderStateSawCSIParams
	decoderStateSawSS3
)

const (
	// maxSequenceLength bounds how many parameter bytes of a CSI sequence
	// are kept; longer sequences are still read to their final byte.
	maxSequenceLength = 8
	// maxSequenceScan bounds how far the decoder reads looking for the
	// final byte of a CSI sequence.
	maxSequenceScan = 64
)

// keyDecoder turns a raw byte stream into keys, one blocking pull at a time.
// A byte that ends a malformed sequence without belonging to it is held in
// pushback and decoded first on the next pull.
type keyDecoder struct {
	in io.ByteReader

	pushback    byte
	hasPushback bool
}

func newKeyDecoder(in io.ByteReader) *keyDecoder {
	return &keyDecoder{in: in}
}

func (d *keyDecoder) unreadByte(b byte) {
	d.pushback = b
	d.hasPushback = true
}

func (d *keyDecoder) readByte() (byte, error) {
	if d.hasPushback {
		d.hasPushback = false
		return d.pushback, nil
	}
	b, err := d.in.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrInputClosed
		}
		return 0, fmt.Errorf("reading input: %w", err)
	}
	return b, nil
}

// next blocks until a complete key is available. Only a failure on the
// first byte is reported; a stream ending inside a sequence yields the
// escape key and leaves the error for the following call.
func (d *keyDecoder) next() (Key, error) {
	b, err := d.readByte()
	if err != nil {
		return Key{}, err
	}

	state := decoderStateGround
	var params []byte
	overlong := false
	scanned := 0

	for {
		switch state {
		case decoderStateGround:
			switch {
			case b == 27:
				state = decoderStateSawEscape
			case b == '\r' || b == '\n':
				return PlainKey(KeyEnter), nil
			case b == 127 || b == 8:
				return PlainKey(KeyBackspace), nil
			case b == '\t':
				return PlainKey(KeyTab), nil
			case b >= 0x80:
				return d.decodeUTF8(b), nil
			default:
				return PlainKey(KeyCode(b)), nil
			}
		case decoderStateSawEscape:
			switch {
			case b == '[':
				state = decoderStateSawCSI
			case b == 'O':
				state = decoderStateSawSS3
			case b >= 'A' && b <= 'Z':
				return AltKey(KeyCode(b - 'A' + 'a')), nil
			case b >= 'a' && b <= 'z':
				return AltKey(KeyCode(b)), nil
			case b == 127 || b == 8:
				return AltKey(KeyBackspace), nil
			case b == '\r' || b == '\n':
				return AltKey(KeyEnter), nil
			case b >= 0x20 && b < 0x7f:
				return AltKey(KeyCode(b)), nil
			default:
				// ESC ESC and friends, absorb the second byte.
				return PlainKey(KeyEscape), nil
			}
		case decoderStateSawCSI, decoderStateSawCSIParams:
			scanned++
			switch {
			case b >= 0x20 && b <= 0x3f:
				// parameter and intermediate bytes
				if len(params) < maxSequenceLength {
					params = append(params, b)
				} else {
					overlong = true
				}
				state = decoderStateSawCSIParams
				if scanned > maxSequenceScan {
					log.Debug(log.CatInput, "CSI sequence never ended", "params", string(params))
					return PlainKey(KeyUnknown), nil
				}
			case b >= 0x40 && b <= 0x7e:
				if overlong || !isNumericParams(params) {
					log.Debug(log.CatInput, "unsupported CSI sequence", "params", string(params), "final", string(rune(b)))
					return PlainKey(KeyUnknown), nil
				}
				return csiKey(params, b), nil
			default:
				// A control byte cuts the sequence short and is decoded on its own.
				d.unreadByte(b)
				return PlainKey(KeyUnknown), nil
			}
		case decoderStateSawSS3:
			return ss3Key(b), nil
		}

		b, err = d.readByte()
		if err != nil {
			return PlainKey(KeyEscape), nil
		}
	}
}

func (d *keyDecoder) decodeUTF8(first byte) Key {
	length := 0
	switch {
	case first&0xe0 == 0xc0:
		length = 2
	case first&0xf0 == 0xe0:
		length = 3
	case first&0xf8 == 0xf0:
		length = 4
	default:
		return PlainKey(KeyUnknown)
	}

	seq := []byte{first}
	for len(seq) < length {
		b, err := d.readByte()
		if err != nil {
			return PlainKey(KeyUnknown)
		}
		if b&0xc0 != 0x80 {
			d.unreadByte(b)
			return PlainKey(KeyUnknown)
		}
		seq = append(seq, b)
	}

	r, _ := utf8.DecodeRune(seq)
	if r == utf8.RuneError {
		return PlainKey(KeyUnknown)
	}
	return PlainKey(KeyCode(r))
}

var csiLetterKeys = map[byte]KeyCode{
	'A': KeyUp,    // ^[[A: Arrow up
	'B': KeyDown,  // ^[[B: Arrow down
	'C': KeyRight, // ^[[C: Arrow right
	'D': KeyLeft,  // ^[[D: Arrow left
	'H': KeyHome,  // ^[[H: Home
	'F': KeyEnd,   // ^[[F: End
	'Z': KeyBacktab,
}

var csiTildeKeys = map[int]KeyCode{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
}

var ss3Keys = map[byte]KeyCode{
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

func isNumericParams(params []byte) bool {
	for _, b := range params {
		if (b < '0' || b > '9') && b != ';' {
			return false
		}
	}
	return true
}

func csiKey(params []byte, final byte) Key {
	var param1, param2 int
	if len(params) > 0 {
		parts := strings.Split(string(params), ";")
		param1, _ = strconv.Atoi(parts[0])
		if len(parts) > 1 {
			param2, _ = strconv.Atoi(parts[1])
		}
	}

	// xterm encodes modifiers as 1 + (shift|alt<<1|ctrl<<2).
	modifiers := 0
	if param2 > 0 {
		modifiers = param2 - 1
	}

	var code KeyCode
	var ok bool
	if final == '~' {
		code, ok = csiTildeKeys[param1]
	} else {
		code, ok = csiLetterKeys[final]
	}
	if !ok {
		log.Debug(log.CatInput, "unknown CSI sequence", "params", string(params), "final", string(rune(final)))
		return PlainKey(KeyUnknown)
	}

	if modifiers&(ModifierAlt|ModifierCtrl) != 0 {
		return AltKey(code)
	}
	return PlainKey(code)
}

func ss3Key(final byte) Key {
	if code, ok := ss3Keys[final]; ok {
		return PlainKey(code)
	}
	log.Debug(log.CatInput, "unknown SS3 sequence", "final", string(rune(final)))
	return PlainKey(KeyUnknown)
}
