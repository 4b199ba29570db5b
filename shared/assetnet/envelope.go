// Package assetnet é o protocolo de leitura remota de arquivos de assets:
// envelopes no formato wire do protobuf trafegando em mensagens binárias de websocket.
package assetnet

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Type identifica o conteúdo do envelope.
type Type int32

const (
	TypeUnknown  Type = iota
	TypeOpen          // cliente -> servidor: Path
	TypeData          // servidor -> cliente: Payload
	TypeNotFound      // servidor -> cliente: caminho inexistente
	TypeError         // servidor -> cliente: Message
	TypeList          // cliente -> servidor; resposta TypeData com caminhos separados por '\n'
	TypePing
	TypePong
)

var typeNames = [...]string{"unknown", "open", "data", "not_found", "error", "list", "ping", "pong"}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// Números de campo do envelope
const (
	fieldType    protowire.Number = 1
	fieldID      protowire.Number = 2
	fieldPath    protowire.Number = 3
	fieldPayload protowire.Number = 4
	fieldMessage protowire.Number = 5
)

// ErrMalformed indica um envelope que não pôde ser decodificado.
var ErrMalformed = errors.New("envelope malformado")

// Envelope é a única mensagem do protocolo. ID casa requisição e resposta.
type Envelope struct {
	Type    Type
	ID      uint64
	Path    string
	Payload []byte
	Message string
}

// Marshal serializa o envelope. Campos zero são omitidos, exceto Payload de TypeData.
func (e *Envelope) Marshal() []byte {
	b := make([]byte, 0, 16+len(e.Path)+len(e.Payload)+len(e.Message))
	if e.Type != TypeUnknown {
		b = protowire.AppendTag(b, fieldType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Type))
	}
	if e.ID != 0 {
		b = protowire.AppendTag(b, fieldID, protowire.VarintType)
		b = protowire.AppendVarint(b, e.ID)
	}
	if e.Path != "" {
		b = protowire.AppendTag(b, fieldPath, protowire.BytesType)
		b = protowire.AppendString(b, e.Path)
	}
	if len(e.Payload) > 0 || e.Type == TypeData {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Payload)
	}
	if e.Message != "" {
		b = protowire.AppendTag(b, fieldMessage, protowire.BytesType)
		b = protowire.AppendString(b, e.Message)
	}
	return b
}

// Unmarshal decodifica o envelope. Campos desconhecidos são ignorados.
func (e *Envelope) Unmarshal(b []byte) error {
	*e = Envelope{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: tipo: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.Type = Type(v)
			b = b[n:]
		case num == fieldID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: id: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.ID = v
			b = b[n:]
		case num == fieldPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("%w: path: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.Path = v
			b = b[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: payload: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.Payload = append([]byte{}, v...)
			b = b[n:]
		case num == fieldMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("%w: message: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.Message = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: campo %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
