package app

import (
	"context"
	"log"
	"time"
)

// pingServer acompanha a latência do servidor de assets enquanto o app roda.
// Falhas só são registradas: a store trata o arquivo remoto como indisponível.
func (a *App) pingServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em pingServer: %v", r)
		}
	}()

	t := time.NewTicker(10 * time.Second)
	defer t.Stop()
	online := true
	for {
		ctx, cancel := context.WithTimeout(a.ctx, 3*time.Second)
		rtt, err := a.remote.Ping(ctx)
		cancel()
		switch {
		case err != nil && online:
			log.Printf("[Network] Servidor de assets inacessível: %v", err)
			online = false
		case err == nil && !online:
			log.Printf("[Network] Servidor de assets de volta (%v)", rtt)
			online = true
		}

		select {
		case <-a.ctx.Done():
			return
		case <-t.C:
		}
	}
}
