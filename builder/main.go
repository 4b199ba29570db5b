package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// target é um binário do projeto.
type target struct {
	Name    string // nome curto usado em -only
	Label   string
	Pkg     string
	Output  string
	Cgo     bool // raylib exige cgo
	LDFlags string
}

func targets(goos string) []target {
	clientFlags := "-s -w"
	if goos == "windows" {
		clientFlags = "-extldflags=-static -s -w -H=windowsgui"
	}
	return []target{
		{Name: "servidor", Label: "SERVIDOR (Pure Go)", Pkg: "./servidor", Output: "servidor/" + exeFor(goos, "server"), LDFlags: "-s -w"},
		{Name: "cliente", Label: "CLIENTE (CGO + GUI)", Pkg: "./cliente", Output: "cliente/" + exeFor(goos, "client"), Cgo: true, LDFlags: clientFlags},
		{Name: "launcher", Label: "LAUNCHER (Pure Go)", Pkg: "./launcher", Output: exeFor(goos, "StructureVision"), LDFlags: "-s -w"},
	}
}

// selectTargets filtra os alvos pela lista "a,b" de -only. Lista vazia mantém todos.
func selectTargets(all []target, only string) ([]target, error) {
	if strings.TrimSpace(only) == "" {
		return all, nil
	}
	var out []target
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		i := slices.IndexFunc(all, func(t target) bool { return t.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("alvo desconhecido %q", name)
		}
		if !slices.ContainsFunc(out, func(t target) bool { return t.Name == name }) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func exeFor(goos, name string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

func main() {
	only := flag.String("only", "", "Compila só os alvos listados (servidor,cliente,launcher)")
	runTests := flag.Bool("test", false, "Roda go test ./... antes de compilar")
	pack := flag.String("pack", "", "Depois da build, importa este pacote (diretório/.zip/.jar) para pack.fvpack")
	wait := flag.Bool("wait", runtime.GOOS == "windows", "Espera Enter antes de sair")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║    StructureVision Native Builder    ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()

	selected, err := selectTargets(targets(runtime.GOOS), *only)
	if err != nil {
		fatal(err, *wait)
	}
	env := buildEnv()

	if *runTests {
		fmt.Println(ColorYellow + "\n[+] Rodando testes..." + ColorReset)
		if err := run(ctx, env, "go", "test", "./..."); err != nil {
			fatal(fmt.Errorf("testes falharam: %w", err), *wait)
		}
	}

	if err := buildAll(ctx, env, selected); err != nil {
		fatal(err, *wait)
	}

	if *pack != "" {
		client := targets(runtime.GOOS)[1].Output
		fmt.Printf(ColorYellow+"\n[+] Importando %s para pack.fvpack..."+ColorReset+"\n", *pack)
		if err := run(ctx, env, client, "-import", *pack, "-out", "pack.fvpack"); err != nil {
			fatal(fmt.Errorf("falha ao importar %s: %w", *pack, err), *wait)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: Execute o 'StructureVision' (launcher) para abrir o visualizador." + ColorReset)
	pause(*wait)
}

// buildEnv monta o ambiente dos comandos. No Windows usa o gcc do MSYS2.
func buildEnv() []string {
	env := os.Environ()
	if runtime.GOOS != "windows" {
		return env
	}
	msysPath := `C:\msys64\mingw64\bin`
	if !strings.Contains(os.Getenv("PATH"), msysPath) {
		env = append(env, "PATH="+msysPath+";"+os.Getenv("PATH"))
		fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
	}
	fmt.Println("  - Compilador C: gcc (MSYS2)")
	return append(env, "CC=gcc")
}

// buildAll compila os alvos Pure Go em paralelo; o cliente (cgo) roda junto mas é o gargalo.
func buildAll(ctx context.Context, env []string, selected []target) error {
	g, ctx := errgroup.WithContext(ctx)
	var out sync.Mutex
	for i, t := range selected {
		g.Go(func() error {
			out.Lock()
			fmt.Printf(ColorYellow+"\n[%d/%d] Compilando %s..."+ColorReset+"\n", i+1, len(selected), t.Label)
			out.Unlock()

			cgo := "CGO_ENABLED=0"
			if t.Cgo {
				cgo = "CGO_ENABLED=1"
			}
			if err := run(ctx, append(slices.Clone(env), cgo), "go", "build", "-ldflags", t.LDFlags, "-o", t.Output, t.Pkg); err != nil {
				return fmt.Errorf("falha ao compilar %s: %w", t.Label, err)
			}

			out.Lock()
			fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", t.Label, t.Output)
			out.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func run(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func pause(wait bool) {
	if !wait {
		return
	}
	fmt.Println("\nPressione Enter para sair...")
	fmt.Scanln()
}

func fatal(err error, wait bool) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	pause(wait)
	os.Exit(1)
}
