package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// --- Estruturas JSON ---

// ModelRef aponta para um modelo com rotação e peso (entrada de variants/apply).
type ModelRef struct {
	Model  string `json:"model"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	UVLock bool   `json:"uvlock,omitempty"`
	Weight int    `json:"weight,omitempty"`
}

// EffectiveWeight retorna o peso, com 1 quando omitido.
func (r ModelRef) EffectiveWeight() int {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}

// ModelRefList aceita tanto um objeto único quanto uma lista ponderada.
type ModelRefList []ModelRef

func (l *ModelRefList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var refs []ModelRef
		if err := json.Unmarshal(data, &refs); err != nil {
			return err
		}
		*l = refs
		return nil
	}
	var ref ModelRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*l = ModelRefList{ref}
	return nil
}

// Condition é o "when" de um caso multipart: OR, AND ou igualdade de propriedades
// (valores alternativos separados por '|').
type Condition struct {
	OR    []Condition
	AND   []Condition
	Props map[string]string
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		switch k {
		case "OR", "AND":
			var list []Condition
			if err := json.Unmarshal(v, &list); err != nil {
				return fmt.Errorf("condição %s: %w", k, err)
			}
			if k == "OR" {
				c.OR = list
			} else {
				c.AND = list
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if c.Props == nil {
				c.Props = make(map[string]string)
			}
			c.Props[k] = fmt.Sprint(val)
		}
	}
	return nil
}

// Matches avalia a condição contra as propriedades do bloco.
func (c *Condition) Matches(props map[string]string) bool {
	if c == nil {
		return true
	}
	if len(c.OR) > 0 {
		matched := false
		for i := range c.OR {
			if c.OR[i].Matches(props) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for i := range c.AND {
		if !c.AND[i].Matches(props) {
			return false
		}
	}
	for k, want := range c.Props {
		if !matchAlternatives(want, props[k]) {
			return false
		}
	}
	return true
}

func matchAlternatives(want, got string) bool {
	for _, alt := range strings.Split(want, "|") {
		if alt == got {
			return true
		}
	}
	return false
}

// MultipartCase aplica os modelos quando a condição casa (sem condição = sempre).
type MultipartCase struct {
	When  *Condition   `json:"when,omitempty"`
	Apply ModelRefList `json:"apply"`
}

// BlockStateDefinition é o root de assets/<ns>/blockstates/<nome>.json
type BlockStateDefinition struct {
	Variants  map[string]ModelRefList `json:"variants,omitempty"`
	Multipart []MultipartCase         `json:"multipart,omitempty"`
}

// ParseBlockState decodifica uma definição de blockstate.
func ParseBlockState(data []byte) (*BlockStateDefinition, error) {
	var def BlockStateDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// MatchVariant procura a variante cujas propriedades casam com as do bloco.
// Chaves "" e "normal" casam com qualquer bloco. Chaves mais longas têm prioridade,
// com empate resolvido pela ordem alfabética.
func (d *BlockStateDefinition) MatchVariant(props map[string]string) (ModelRefList, bool) {
	keys := make([]string, 0, len(d.Variants))
	for k := range d.Variants {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := strings.Count(keys[i], "="), strings.Count(keys[j], "=")
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if variantKeyMatches(k, props) {
			return d.Variants[k], true
		}
	}
	return nil, false
}

func variantKeyMatches(key string, props map[string]string) bool {
	if key == "" || key == "normal" {
		return true
	}
	for _, pair := range strings.Split(key, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return false
		}
		if props[strings.TrimSpace(k)] != strings.TrimSpace(v) {
			return false
		}
	}
	return true
}

// --- Fonte de blockstates ---

// BlockStatePath converte "ns:nome" no caminho do JSON de blockstate.
func BlockStatePath(name string) string {
	ns, p := splitResource(name)
	return "assets/" + ns + "/blockstates/" + p + ".json"
}

// StateSource lê definições de blockstate através da store.
type StateSource struct {
	store *Store
}

// NewStateSource cria a fonte sobre a store.
func NewStateSource(store *Store) *StateSource {
	return &StateSource{store: store}
}

// Get retorna a definição do tipo de bloco, ou nil se nenhum arquivo a define.
func (s *StateSource) Get(ctx context.Context, name string) (*BlockStateDefinition, error) {
	text, found, err := s.store.GetText(ctx, BlockStatePath(name))
	if err != nil || !found {
		return nil, err
	}
	def, err := ParseBlockState([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("falha ao parsear blockstate de %s: %w", name, err)
	}
	return def, nil
}

// splitResource separa "ns:caminho", usando minecraft como namespace padrão.
func splitResource(name string) (string, string) {
	if ns, p, ok := strings.Cut(name, ":"); ok {
		return ns, p
	}
	return "minecraft", name
}
