package bytecode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"ash/internal/value"
)

// Format selects the encoding of a persisted chunk.
type Format uint8

const (
	FormatMsgpack Format = iota + 1
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ParseFormat accepts the names used by flags and ash.toml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "msgpack":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("unknown chunk format %q (want msgpack or cbor)", s)
}

const (
	// Magic opens every chunk file.
	Magic = "ASHC"
	// SchemaVersion is bumped whenever the payload layout changes.
	SchemaVersion byte = 1

	headerSize = len(Magic) + 2
)

var (
	ErrBadMagic           = errors.New("bytecode: not a chunk file")
	ErrUnsupportedVersion = errors.New("bytecode: unsupported chunk schema version")
)

type filePayload struct {
	Constants []fileConstant    `msgpack:"constants" cbor:"1,keyasint"`
	Code      []byte            `msgpack:"code" cbor:"2,keyasint"`
	Symbols   map[string]string `msgpack:"symbols,omitempty" cbor:"3,keyasint,omitempty"`
}

type fileConstant struct {
	Kind  uint8   `msgpack:"k" cbor:"1,keyasint"`
	Str   string  `msgpack:"s,omitempty" cbor:"2,keyasint,omitempty"`
	Int   int32   `msgpack:"i,omitempty" cbor:"3,keyasint,omitempty"`
	Float float64 `msgpack:"f,omitempty" cbor:"4,keyasint,omitempty"`
	Bool  bool    `msgpack:"b,omitempty" cbor:"5,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal encodes the chunk with its file header.
func Marshal(c *Chunk, f Format) ([]byte, error) {
	payload := filePayload{Code: c.Code, Symbols: c.Symbols}
	payload.Constants = make([]fileConstant, len(c.Constants))
	for i, k := range c.Constants {
		payload.Constants[i] = fileConstant{Kind: uint8(k.Kind), Str: k.Str, Int: k.Int, Float: k.Float, Bool: k.Bool}
	}
	var body []byte
	var err error
	switch f {
	case FormatMsgpack:
		body, err = msgpack.Marshal(&payload)
	case FormatCBOR:
		body, err = cborEncMode.Marshal(&payload)
	default:
		return nil, fmt.Errorf("bytecode: unknown format %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("bytecode: encode %s: %w", f, err)
	}
	out := make([]byte, 0, headerSize+len(body))
	out = append(out, Magic...)
	out = append(out, SchemaVersion, byte(f))
	return append(out, body...), nil
}

// Unmarshal decodes a chunk and reports the format it was stored in.
func Unmarshal(data []byte) (*Chunk, Format, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		return nil, 0, ErrBadMagic
	}
	if v := data[len(Magic)]; v != SchemaVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	f := Format(data[len(Magic)+1])
	body := data[headerSize:]
	var payload filePayload
	var err error
	switch f {
	case FormatMsgpack:
		err = msgpack.Unmarshal(body, &payload)
	case FormatCBOR:
		err = cbor.Unmarshal(body, &payload)
	default:
		return nil, 0, fmt.Errorf("bytecode: unknown format byte %d", byte(f))
	}
	if err != nil {
		return nil, f, fmt.Errorf("bytecode: decode %s: %w", f, err)
	}

	c := NewChunk()
	c.Code = payload.Code
	if payload.Symbols != nil {
		c.Symbols = payload.Symbols
	}
	c.Constants = make([]value.Value, len(payload.Constants))
	for i, k := range payload.Constants {
		kind := value.Kind(k.Kind)
		if kind == value.KindInvalid || kind > value.KindBool {
			return nil, f, fmt.Errorf("bytecode: constant %d has unknown kind %d", i, k.Kind)
		}
		c.Constants[i] = value.Value{Kind: kind, Str: k.Str, Int: k.Int, Float: k.Float, Bool: k.Bool}
	}
	c.rebuildNames()
	return c, f, nil
}

// WriteFile writes the encoded chunk to w.
func WriteFile(w io.Writer, c *Chunk, f Format) error {
	data, err := Marshal(c, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFile reads a whole chunk file from r.
func ReadFile(r io.Reader) (*Chunk, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return Unmarshal(data)
}
