package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"StructureVision/shared/mapdata"
)

//go:embed blocks.yaml
var defaultCatalogYAML []byte

// Occlusion classifica como um tipo de bloco interage com as faces vizinhas.
type Occlusion int

const (
	// OcclusionOpaque esconde as faces encostadas nele.
	OcclusionOpaque Occlusion = iota
	// OcclusionTransparent tem geometria própria mas não esconde vizinhos (vidro, folhas, escadas).
	OcclusionTransparent
	// OcclusionInvisible não produz geometria (ar e afins).
	OcclusionInvisible
)

func (o Occlusion) String() string {
	switch o {
	case OcclusionOpaque:
		return "opaque"
	case OcclusionTransparent:
		return "transparent"
	case OcclusionInvisible:
		return "invisible"
	}
	return fmt.Sprintf("Occlusion(%d)", int(o))
}

func parseOcclusion(s string) (Occlusion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opaque", "":
		return OcclusionOpaque, nil
	case "transparent", "non-occluding":
		return OcclusionTransparent, nil
	case "invisible":
		return OcclusionInvisible, nil
	}
	return 0, fmt.Errorf("classe de oclusão desconhecida: %q", s)
}

// --- Estruturas YAML ---

// CatalogEntry associa padrões de nome de bloco a uma classe de oclusão.
type CatalogEntry struct {
	Tokens    []string `yaml:"tokens"`
	Occlusion string   `yaml:"occlusion"`
	Comment   string   `yaml:"comment,omitempty"`
}

// CatalogConfig é o root do blocks.yaml
type CatalogConfig struct {
	Blocks []CatalogEntry `yaml:"blocks"`
}

// --- Catalog ---

type catalogRule struct {
	pattern   string
	score     int
	occlusion Occlusion
}

// Catalog responde às consultas de oclusão do culler. Os resultados são memorizados por nome.
type Catalog struct {
	rules []catalogRule
	cache sync.Map // string -> Occlusion
}

// DefaultCatalog retorna o catálogo embutido no binário.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("catálogo embutido inválido: %v", err))
	}
	return c
}

// LoadCatalog lê um catálogo YAML do disco.
func LoadCatalog(file string) (*Catalog, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", file, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("falha ao parsear %s: %w", file, err)
	}
	return c, nil
}

// ParseCatalog constrói o catálogo a partir do YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var conf CatalogConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}

	c := &Catalog{}
	for _, entry := range conf.Blocks {
		occ, err := parseOcclusion(entry.Occlusion)
		if err != nil {
			return nil, err
		}
		for _, pat := range entry.Tokens {
			if _, err := path.Match(pat, ""); err != nil {
				return nil, fmt.Errorf("padrão inválido %q: %w", pat, err)
			}
			c.rules = append(c.rules, catalogRule{pattern: pat, score: specificityScore(pat), occlusion: occ})
		}
	}
	return c, nil
}

// Lookup retorna a classe do padrão mais específico que casa com o nome.
// Nomes sem namespace são tratados como do namespace padrão; sem regra
// correspondente, opacos.
func (c *Catalog) Lookup(name string) Occlusion {
	name = mapdata.NormalizeName(name)
	if v, ok := c.cache.Load(name); ok {
		return v.(Occlusion)
	}

	best := OcclusionOpaque
	bestScore := -1
	for _, r := range c.rules {
		if matchToken(r.pattern, name) && r.score > bestScore {
			bestScore = r.score
			best = r.occlusion
		}
	}
	c.cache.Store(name, best)
	return best
}

// IsInvisible indica se o tipo não produz geometria.
func (c *Catalog) IsInvisible(name string) bool {
	return c.Lookup(name) == OcclusionInvisible
}

// IsOccluding indica se o tipo esconde as faces dos vizinhos.
func (c *Catalog) IsOccluding(name string) bool {
	return c.Lookup(name) == OcclusionOpaque
}

// --- Wildcard Matching ---

// matchToken compara um nome de bloco contra um padrão segmento a segmento.
// Formato: "NAMESPACE:PATH". Cada segmento aceita os curingas de path.Match.
func matchToken(pattern, query string) bool {
	// Se o padrão for apenas "*", aceita tudo
	if pattern == "*" {
		return true
	}

	patParts := strings.Split(pattern, ":")
	queryParts := strings.Split(query, ":")

	// Se os tamanhos divergem, não pode casar
	if len(patParts) != len(queryParts) {
		return false
	}

	for i := range patParts {
		if patParts[i] == "*" {
			continue
		}
		ok, err := path.Match(patParts[i], queryParts[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// specificityScore calcula a "especificidade" de um padrão.
// Segmento literal vale 2, segmento com curinga parcial vale 1, "*" vale 0.
func specificityScore(pattern string) int {
	if pattern == "*" {
		return 0
	}
	score := 0
	for _, p := range strings.Split(pattern, ":") {
		switch {
		case p == "*":
		case strings.ContainsAny(p, "*?["):
			score++
		default:
			score += 2
		}
	}
	return score
}
