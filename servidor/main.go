package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"StructureVision/shared/assetnet"
	"StructureVision/shared/config"
)

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (assets/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	cfg := config.Load()
	addr := flag.String("addr", cfg.ServerAddr, "Endereço de escuta")
	source := flag.String("assets", cfg.Archives.Fallback, "Pacote servido (diretório ou .zip/.jar)")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log no console e em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║   StructureVision SERVER v0.1.0      ║")
	log.Println("╚══════════════════════════════════════╝")

	src, err := assetnet.OpenFSSource(*source)
	if err != nil {
		log.Fatalf("Erro fatal: %v", err)
	}
	defer src.Close()
	log.Printf("Servindo assets de %s", src.Name())

	handler := assetnet.NewHandler(src)
	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"source":   src.Name(),
			"conns":    handler.Conns(),
			"requests": handler.Requests(),
		})
	})

	// Verificação de porta antes de subir o servidor
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %s.", *addr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("Encerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Servidor StructureVision iniciado em %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}
