package assets

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce agrupa rajadas de eventos (editores salvam em vários passos).
const watchDebounce = 250 * time.Millisecond

// Watch observa os diretórios dos DirArchive da store. A cada alteração os memos da
// store são descartados e onChange (se não nil) é chamado. Retorna quando ctx termina.
func Watch(ctx context.Context, store *Store, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("falha ao criar watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, a := range store.Archives() {
		dir, ok := a.(*DirArchive)
		if !ok {
			continue
		}
		err := filepath.WalkDir(dir.Root(), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				watched++
				return w.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("falha ao observar %s: %w", dir.Root(), err)
		}
	}
	if watched == 0 {
		<-ctx.Done()
		return nil
	}
	log.Printf("[Watch] observando %d diretórios de assets", watched)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// Novos subdiretórios também precisam ser observados
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watch] erro: %v", err)
		case <-fire:
			fire = nil
			store.Clear()
			if onChange != nil {
				onChange()
			}
		}
	}
}
