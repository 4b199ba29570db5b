package mapdata

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// CurrentFormatVersion é a versão do formato de snapshot (.svz).
const CurrentFormatVersion = 1

type snapshotV1 struct {
	FormatVersion int
	File          StructureFile
}

// WriteSnapshot serializa a estrutura em GOB comprimido com zstd.
func WriteSnapshot(w io.Writer, st *Structure) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	snap := snapshotV1{FormatVersion: CurrentFormatVersion, File: st.ToFile()}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot lê um snapshot gerado por WriteSnapshot.
// A estrutura resultante passa pela mesma validação dos arquivos JSON.
func ReadSnapshot(r io.Reader) (*Structure, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var snap snapshotV1
	if err := gob.NewDecoder(bufio.NewReaderSize(dec, 64*1024)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: gob decode: %v", ErrMalformed, err)
	}
	if snap.FormatVersion != CurrentFormatVersion {
		return nil, fmt.Errorf("%w: versão de snapshot %d não suportada", ErrMalformed, snap.FormatVersion)
	}
	return snap.File.Build()
}

// SaveSnapshot grava o snapshot em disco.
func SaveSnapshot(path string, st *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteSnapshot(f, st); err != nil {
		log.Printf("[Persistence] ERRO ao salvar snapshot %s: %v", path, err)
		return err
	}
	log.Printf("[Persistence] Snapshot salvo: %s (%d blocos)", path, st.Count())
	return f.Close()
}

// LoadSnapshot carrega um snapshot do disco.
func LoadSnapshot(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// Load escolhe o leitor pela extensão: .svz (snapshot) ou JSON.
func Load(path string) (*Structure, error) {
	if filepath.Ext(path) == ".svz" {
		return LoadSnapshot(path)
	}
	return LoadJSON(path)
}
