package assets

import (
	"context"
	"fmt"

	"StructureVision/shared/config"
)

// NewStoreFromConfig monta a store para a versão da estrutura: primário escolhido
// pela tabela de versões, overlays configurados em ordem e por fim os extras
// (por exemplo o arquivo remoto).
func NewStoreFromConfig(ctx context.Context, ac config.ArchiveConfig, version string, extra ...Archive) (*Store, error) {
	overlays := make([]Archive, 0, len(ac.Overlays)+len(extra))
	for _, p := range ac.Overlays {
		a, err := OpenArchive(p)
		if err != nil {
			for _, o := range overlays {
				CloseArchive(o)
			}
			return nil, fmt.Errorf("falha ao abrir overlay: %w", err)
		}
		overlays = append(overlays, a)
	}
	overlays = append(overlays, extra...)

	store, err := NewStoreForVersion(ctx, version, VersionResolver(ac.PrimaryByVersion, ac.Fallback), overlays...)
	if err != nil {
		for _, o := range overlays {
			CloseArchive(o)
		}
		return nil, err
	}
	return store, nil
}
