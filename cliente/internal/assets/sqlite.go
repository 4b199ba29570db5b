package assets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PackEntry representa o esquema do banco para uma entrada do pack.
type PackEntry struct {
	Path      string `gorm:"primaryKey"`
	Data      []byte
	Size      int
	UpdatedAt time.Time // Para controle interno do GORM
}

// PackMetadata armazena informações globais do pack no banco.
type PackMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// CurrentPackVersion é a versão do esquema do pack SQLite.
const CurrentPackVersion = 1

// SQLiteArchive é um resource pack importado para um banco SQLite (.fvpack).
type SQLiteArchive struct {
	name string
	db   *gorm.DB
}

// OpenSQLiteArchive abre (ou cria) o pack e roda as migrações.
func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&PackEntry{}, &PackMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	db.Save(&PackMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentPackVersion)})

	log.Printf("[Persistence] Pack SQLite aberto: %s", path)
	return &SQLiteArchive{name: path, db: db}, nil
}

func (a *SQLiteArchive) Name() string { return a.name }

func (a *SQLiteArchive) Open(ctx context.Context, path string) ([]byte, error) {
	clean, ok := cleanPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	var entry PackEntry
	err := a.db.WithContext(ctx).First(&entry, "path = ?", clean).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("falha ao consultar %s: %w", path, err)
	}
	return entry.Data, nil
}

func (a *SQLiteArchive) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := a.db.WithContext(ctx).Model(&PackEntry{}).Order("path").Pluck("path", &paths).Error
	return paths, err
}

// Put grava (upsert) uma entrada.
func (a *SQLiteArchive) Put(ctx context.Context, path string, data []byte) error {
	clean, ok := cleanPath(path)
	if !ok {
		return fmt.Errorf("caminho inválido: %q", path)
	}
	entry := PackEntry{Path: clean, Data: data, Size: len(data)}
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}

// Import copia todas as entradas de um arquivo enumerável para o pack, em uma transação.
func (a *SQLiteArchive) Import(ctx context.Context, src interface {
	Archive
	Lister
}) (int, error) {
	paths, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("falha ao listar %s: %w", src.Name(), err)
	}

	count := 0
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range paths {
			data, err := src.Open(ctx, p)
			if err != nil {
				return fmt.Errorf("falha ao ler %s: %w", p, err)
			}
			entry := PackEntry{Path: p, Data: data, Size: len(data)}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
				return err
			}
			count++
		}
		return tx.Save(&PackMetadata{Key: "Source:" + src.Name(), Value: time.Now().UTC().Format(time.RFC3339)}).Error
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[Persistence] %d entradas importadas de %s", count, src.Name())
	return count, nil
}

// Close fecha a conexão com o banco.
func (a *SQLiteArchive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
