package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"StructureVision/cliente/internal/app"
	"StructureVision/cliente/internal/assets"
	"StructureVision/cliente/internal/session"
	"StructureVision/shared/config"
	"StructureVision/shared/mapdata"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	configPath := flag.String("config", "", "Arquivo de configuração (padrão: config.json ao lado do executável)")
	serverURL := flag.String("server", "", "URL do servidor de assets (liga o arquivo remoto)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	assetsDir := flag.String("assets", "", "Arquivo primário padrão (diretório, .zip/.jar ou .fvpack)")
	seed := flag.Uint64("seed", 0, "Seed do sorteio de variantes")
	importSrc := flag.String("import", "", "Importa um pacote (diretório/.zip/.jar) para o .fvpack de -out e sai")
	importOut := flag.String("out", "pack.fvpack", "Destino de -import")
	stats := flag.Bool("stats", false, "Monta a estrutura sem janela, imprime as estatísticas e sai")
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("debug_sv.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil && !*stats && *importSrc == "" {
		log.SetOutput(f)
		log.Println("--- INICIANDO STRUCTURE VISION ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║       StructureVision v0.1.0         ║")
	log.Println("║  Visualizador 3D de estruturas voxel ║")
	log.Println("╚══════════════════════════════════════╝")

	// Carregar configurações
	cfg := config.Load()
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[StructureVision] %v", err)
		}
	}

	// Aplicar flags de linha de comando (sobrescrevem o config salvo)
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
		cfg.Archives.Remote = true
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}
	if *assetsDir != "" {
		cfg.Archives.Fallback = *assetsDir
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	switch {
	case *importSrc != "":
		if err := importPack(*importSrc, *importOut); err != nil {
			log.Fatalf("[Import] %v", err)
		}
		return
	case *stats:
		if flag.NArg() == 0 {
			log.Fatal("[Stats] informe o arquivo da estrutura")
		}
		if err := printStats(cfg, flag.Arg(0)); err != nil {
			log.Fatalf("[Stats] %v", err)
		}
		return
	}

	// Criar e rodar a aplicação
	application := app.New(cfg, flag.Arg(0))
	application.Run()
}

// importPack copia todas as entradas de um pacote para um .fvpack (SQLite).
func importPack(src, out string) error {
	from, err := assets.OpenArchive(src)
	if err != nil {
		return err
	}
	defer assets.CloseArchive(from)
	lister, ok := from.(assets.Lister)
	if !ok {
		return fmt.Errorf("%s não suporta listagem", src)
	}

	pack, err := assets.OpenSQLiteArchive(out)
	if err != nil {
		return err
	}
	defer pack.Close()

	n, err := pack.Import(context.Background(), struct {
		assets.Archive
		assets.Lister
	}{from, lister})
	if err != nil {
		return err
	}
	log.Printf("[Import] %d entradas de %s importadas para %s", n, src, out)
	return nil
}

// printStats monta a estrutura numa sessão headless e imprime os contadores.
func printStats(cfg *config.Config, path string) error {
	st, err := mapdata.Load(path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := assets.NewStoreFromConfig(ctx, cfg.Archives, st.Version)
	if err != nil {
		return err
	}

	var catalog *assets.Catalog
	if cfg.CatalogPath != "" {
		if catalog, err = assets.LoadCatalog(cfg.CatalogPath); err != nil {
			return err
		}
	}

	sess := session.New(store, nil, catalog, session.FromConfig(cfg))
	defer sess.Dispose()
	swapErr := sess.Swap(ctx, st)

	s := sess.Stats()
	size := st.Size()
	fmt.Printf("Estrutura:  %s (%dx%dx%d, versão %q)\n", path, size.Width, size.Height, size.Length, st.Version)
	fmt.Printf("Blocos:     %d (%d tipos)\n", st.Count(), len(st.BlockTypes()))
	fmt.Printf("Visíveis:   %d  ocultos: %d  faces expostas: %d\n", s.Visible, s.Culled, s.Faces)
	fmt.Printf("Fragments:  %d  templates: %d  builds: %d\n", s.Fragments, s.Templates, s.Builds)
	fmt.Printf("Store:      %d lookups, %d fetches, %d degradados\n", s.Store.Lookups, s.Store.Fetches, s.Store.Degraded)
	return swapErr
}
