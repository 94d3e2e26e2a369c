// Package datafile reads and writes ledger save files. Two formats share
// a header: a plaintext stream and an AES-256-CBC encrypted one. All
// integers are big-endian.
package datafile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sadopc/timekeeper/internal/crypt"
	"github.com/sadopc/timekeeper/internal/ledger"
)

const (
	MagicPlain     uint32 = 0x051076A0
	MagicEncrypted uint32 = 0x051076B0
	Version        uint16 = 100

	// magic + version + salt + hash
	headerSize = 4 + 2 + crypt.SaltSize + crypt.HashSize
)

var byteOrder = binary.BigEndian

var (
	ErrBadFormat     = errors.New("bad save file format")
	ErrWrongPassword = errors.New("wrong password")
	ErrIO            = errors.New("save file i/o failed")
)

type Kind int

const (
	KindPlain Kind = iota
	KindEncrypted
)

func (k Kind) String() string {
	if k == KindEncrypted {
		return "encrypted"
	}
	return "plain"
}

// Record is the persisted unit: the file identity plus its tasks.
type Record struct {
	Kind         Kind
	Salt         [crypt.SaltSize]byte
	PasswordHash [crypt.HashSize]byte
	Tasks        []ledger.Task
}

type header struct {
	Magic   uint32
	Version uint16
	Salt    [crypt.SaltSize]byte
	Hash    [crypt.HashSize]byte
}

func readHeader(r io.Reader) (header, error) {
	var h header
	if err := binary.Read(r, byteOrder, &h); err != nil {
		return h, fmt.Errorf("read header: %w", ErrBadFormat)
	}
	if h.Magic != MagicPlain && h.Magic != MagicEncrypted {
		return h, fmt.Errorf("magic %#08x: %w", h.Magic, ErrBadFormat)
	}
	if h.Version != Version {
		return h, fmt.Errorf("version %d: %w", h.Version, ErrBadFormat)
	}
	return h, nil
}

func ioErr(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrIO, err)
}

// Detect reports the format of the file at path from its header.
func Detect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, ioErr("open", path, err)
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if h.Magic == MagicEncrypted {
		return KindEncrypted, nil
	}
	return KindPlain, nil
}

// Decode parses a save file. password is ignored for plaintext files.
// Window values whose saved day, month or year stamp differs from today
// are zeroed, and every task gets a today log entry.
func Decode(data []byte, password []byte, today ledger.Date) (*Record, error) {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	body := data[headerSize:]

	if h.Magic == MagicPlain {
		tasks, err := decodePlain(body, today)
		if err != nil {
			return nil, err
		}
		return &Record{Kind: KindPlain, Tasks: tasks}, nil
	}

	if !crypt.CheckPassword(password, h.Hash) {
		return nil, ErrWrongPassword
	}
	tasks, err := decodeEncrypted(body, crypt.DeriveKey(password, h.Salt[:]), today)
	if err != nil {
		return nil, err
	}
	return &Record{Kind: KindEncrypted, Salt: h.Salt, PasswordHash: h.Hash, Tasks: tasks}, nil
}

// Encode serializes rec. Encrypted records use password with rec.Salt;
// the stored check hash is recomputed from password.
func Encode(rec *Record, password []byte, today ledger.Date) ([]byte, error) {
	var buf bytes.Buffer
	h := header{Magic: MagicPlain, Version: Version}
	if rec.Kind == KindEncrypted {
		h.Magic = MagicEncrypted
		h.Salt = rec.Salt
		h.Hash = crypt.HashPassword(password)
	}
	if err := binary.Write(&buf, byteOrder, h); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	if rec.Kind == KindPlain {
		if err := encodePlain(&buf, rec.Tasks, today); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	ct, err := encodeEncrypted(rec.Tasks, crypt.DeriveKey(password, rec.Salt[:]), today)
	if err != nil {
		return nil, err
	}
	buf.Write(ct)
	return buf.Bytes(), nil
}

// Load reads and decodes the file at path.
func Load(path string, password []byte, today ledger.Date) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	rec, err := Decode(data, password, today)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return rec, nil
}

// Save encodes rec and replaces path. An existing file is first copied to
// path.bak; the new contents go through a temp file and rename.
func Save(path string, rec *Record, password []byte, today ledger.Date) error {
	data, err := Encode(rec, password, today)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := Backup(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioErr("create directory for", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return ioErr("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ioErr("rename", tmp, err)
	}
	return nil
}

// BackupPath returns the backup location for path.
func BackupPath(path string) string { return path + ".bak" }

// Backup copies path to path.bak, replacing any older backup. A missing
// path is not an error.
func Backup(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ioErr("read", path, err)
	}
	if err := os.WriteFile(BackupPath(path), data, 0o600); err != nil {
		return ioErr("write backup of", path, err)
	}
	return nil
}

// RestoreBackup copies path.bak back over path.
func RestoreBackup(path string) error {
	data, err := os.ReadFile(BackupPath(path))
	if err != nil {
		return ioErr("read backup of", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ioErr("restore", path, err)
	}
	return nil
}
