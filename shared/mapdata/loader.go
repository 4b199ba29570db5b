package mapdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"StructureVision/shared/util"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// --- Estruturas JSON ---

// PaletteEntry é uma entrada da paleta no arquivo de estrutura.
type PaletteEntry struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// BlockEntry posiciona uma entrada da paleta na grade.
type BlockEntry struct {
	Pos   [3]int `json:"pos"`
	State int    `json:"state"`
}

// StructureFile é o root do arquivo .json de estrutura.
type StructureFile struct {
	Version string         `json:"version,omitempty"`
	Size    [3]int         `json:"size"`
	Palette []PaletteEntry `json:"palette"`
	Blocks  []BlockEntry   `json:"blocks"`
}

const structureSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["size", "palette", "blocks"],
  "properties": {
    "version": {"type": "string"},
    "size": {
      "type": "array",
      "items": {"type": "integer", "minimum": 0},
      "minItems": 3,
      "maxItems": 3
    },
    "palette": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "properties": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    },
    "blocks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["pos", "state"],
        "properties": {
          "pos": {
            "type": "array",
            "items": {"type": "integer", "minimum": 0},
            "minItems": 3,
            "maxItems": 3
          },
          "state": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func structureValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("structure.schema.json", structureSchema)
	})
	return schema, schemaErr
}

// ParseJSON valida o documento contra o schema e constrói a estrutura.
// Qualquer erro é reportado como ErrMalformed, antes de tocar em caches.
func ParseJSON(data []byte) (*Structure, error) {
	validator, err := structureValidator()
	if err != nil {
		return nil, fmt.Errorf("falha ao compilar schema de estrutura: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: json inválido: %v", ErrMalformed, err)
	}
	if err := validator.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var file StructureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return file.Build()
}

// Build converte o arquivo em Structure, rejeitando referências fora da paleta ou da grade.
func (f *StructureFile) Build() (*Structure, error) {
	st := NewStructure(f.Size[0], f.Size[1], f.Size[2])
	st.Version = f.Version
	for _, p := range f.Palette {
		st.AddPalette(NewBlock(p.Name, p.Properties))
	}
	for i, b := range f.Blocks {
		pos := util.NewPos(b.Pos[0], b.Pos[1], b.Pos[2])
		if !st.size.Contains(pos) {
			return nil, fmt.Errorf("%w: bloco %d em %s fora da grade %dx%dx%d",
				ErrMalformed, i, pos, f.Size[0], f.Size[1], f.Size[2])
		}
		if b.State >= len(f.Palette) {
			return nil, fmt.Errorf("%w: bloco %d referencia paleta %d inexistente", ErrMalformed, i, b.State)
		}
		st.SetBlock(pos, b.State)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// LoadJSON lê e valida um arquivo de estrutura do disco.
func LoadJSON(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	return ParseJSON(data)
}

// ToFile converte a estrutura de volta no formato de arquivo.
func (s *Structure) ToFile() StructureFile {
	f := StructureFile{
		Version: s.Version,
		Size:    [3]int{s.size.Width, s.size.Height, s.size.Length},
		Palette: make([]PaletteEntry, len(s.palette)),
		Blocks:  make([]BlockEntry, 0, len(s.blocks)),
	}
	for i, b := range s.palette {
		f.Palette[i] = PaletteEntry{Name: b.Name, Properties: b.Properties}
	}
	for y := 0; y < s.size.Height; y++ {
		for z := 0; z < s.size.Length; z++ {
			for x := 0; x < s.size.Width; x++ {
				p := util.NewPos(x, y, z)
				if idx, ok := s.blocks[s.size.Index(p)]; ok {
					f.Blocks = append(f.Blocks, BlockEntry{Pos: [3]int{x, y, z}, State: idx})
				}
			}
		}
	}
	return f
}
