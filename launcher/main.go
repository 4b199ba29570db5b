package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func main() {
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║     StructureVision Launcher         ║")
	fmt.Println("╚══════════════════════════════════════╝")

	// 1. Servidor de assets (opcional: só se o binário existir)
	serverPath, err := filepath.Abs(filepath.Join("servidor", exe("server")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do servidor: %v", err)
	}
	withServer := false
	if _, err := os.Stat(serverPath); err == nil {
		fmt.Println("[1/2] Iniciando Servidor de assets...")
		var serverCmd *exec.Cmd
		if runtime.GOOS == "windows" {
			// Nova janela para ver os logs
			serverCmd = exec.Command("cmd", "/c", "start", "StructureVision SERVER", exe("server"))
		} else {
			serverCmd = exec.Command(serverPath)
		}
		serverCmd.Dir = "servidor"
		if err := serverCmd.Start(); err != nil {
			log.Fatalf("Erro ao iniciar servidor: %v", err)
		}
		withServer = true

		fmt.Println("Aguardando inicialização do servidor...")
		time.Sleep(2 * time.Second)
	} else {
		fmt.Println("[1/2] Servidor não encontrado, usando apenas pacotes locais.")
	}

	// 2. Cliente
	fmt.Println("[2/2] Abrindo Cliente...")
	absClientPath, err := filepath.Abs(filepath.Join("cliente", exe("client")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do cliente: %v", err)
	}

	args := os.Args[1:]
	if withServer {
		args = append([]string{"-server", "ws://127.0.0.1:8080/ws"}, args...)
	}
	clientCmd := exec.Command(absClientPath, args...)
	clientCmd.Dir = "cliente" // Diretório de trabalho para carregar recursos

	if err := clientCmd.Start(); err != nil {
		fmt.Printf("ERRO CRÍTICO: Não foi possível executar o cliente em %s\n", absClientPath)
		fmt.Printf("Detalhes: %v\n", err)
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
		return
	}

	fmt.Println("\nSucesso! StructureVision foi iniciado.")
	fmt.Println("O Launcher fechará automaticamente em 2 segundos...")
	time.Sleep(2 * time.Second)
}
