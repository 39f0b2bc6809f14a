// Package obsidian reads and edits Obsidian's obsidian.json vault list.
//
// The document belongs to Obsidian, so every edit is applied to the raw JSON
// bytes in place: fields this package does not know about, and the order of
// keys, survive a load/merge/save cycle untouched.
package obsidian

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/obsidian-open/obsidian-open/internal/apperr"
)

const vaultsKey = "vaults"

// Vault is a decoded view of one entry under "vaults".
type Vault struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Timestamp int64  `json:"ts"`
	Open      bool   `json:"open,omitempty"`
}

// vaultRecord is the shape written for newly added vaults.
type vaultRecord struct {
	Path string `json:"path"`
	TS   int64  `json:"ts"`
	Open bool   `json:"open"`
}

// Document is an in-memory copy of obsidian.json.
type Document struct {
	raw []byte
}

// NewDocument returns a document with an empty vault list.
func NewDocument() *Document {
	return &Document{raw: []byte(`{"vaults":{}}`)}
}

// Parse validates data and wraps it in a Document. The top level must be an
// object and "vaults", when present, must be an object too.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: obsidian.json is not valid JSON", apperr.ErrParse)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: obsidian.json top level is not an object", apperr.ErrParse)
	}
	if vaults := root.Get(vaultsKey); vaults.Exists() && !vaults.IsObject() {
		return nil, fmt.Errorf("%w: obsidian.json %q is not an object", apperr.ErrParse, vaultsKey)
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw}, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	return d.raw
}

// ClearActive removes the "open" field from every vault.
func (d *Document) ClearActive() error {
	var flagged []string
	gjson.GetBytes(d.raw, vaultsKey).ForEach(func(key, value gjson.Result) bool {
		if value.Get("open").Exists() {
			flagged = append(flagged, key.String())
		}
		return true
	})

	for _, id := range flagged {
		raw, err := sjson.DeleteBytes(d.raw, fieldPath(id, "open"))
		if err != nil {
			return fmt.Errorf("%w: clear open flag on vault %s: %w", apperr.ErrParse, id, err)
		}
		d.raw = raw
	}
	return nil
}

// Merge registers folder as a vault and makes it the only open one. An
// existing record for the same folder is reused (looked up by path, since
// older tools may have keyed it differently); otherwise a record is added
// under VaultID. The returned id is the key the folder lives under.
func (d *Document) Merge(folder string, now time.Time) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %w", apperr.ErrValidation, folder, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: folder %s", apperr.ErrNotFound, abs)
		}
		return "", fmt.Errorf("%w: stat %s: %w", apperr.ErrIO, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", apperr.ErrValidation, abs)
	}

	if err := d.ClearActive(); err != nil {
		return "", err
	}
	if err := d.ensureVaults(); err != nil {
		return "", err
	}

	ts := now.UnixMilli()

	if id, ok := d.findByPath(abs); ok {
		if err := d.set(fieldPath(id, "ts"), ts); err != nil {
			return "", err
		}
		if err := d.set(fieldPath(id, "open"), true); err != nil {
			return "", err
		}
		return id, nil
	}

	id := VaultID(abs)
	if existing := gjson.GetBytes(d.raw, vaultPath(id)); existing.Exists() {
		return "", fmt.Errorf("%w: vault id %s already maps to %s", apperr.ErrValidation, id, existing.Get("path").String())
	}

	record, err := json.Marshal(vaultRecord{Path: abs, TS: ts, Open: true})
	if err != nil {
		return "", err
	}
	raw, err := sjson.SetRawBytes(d.raw, vaultPath(id), record)
	if err != nil {
		return "", fmt.Errorf("%w: add vault %s: %w", apperr.ErrParse, id, err)
	}
	d.raw = raw
	return id, nil
}

// Vaults lists every vault, most recently used first.
func (d *Document) Vaults() []Vault {
	var vaults []Vault
	gjson.GetBytes(d.raw, vaultsKey).ForEach(func(key, value gjson.Result) bool {
		vaults = append(vaults, Vault{
			ID:        key.String(),
			Path:      value.Get("path").String(),
			Timestamp: value.Get("ts").Int(),
			Open:      value.Get("open").Bool(),
		})
		return true
	})

	sort.SliceStable(vaults, func(i, j int) bool {
		if vaults[i].Timestamp != vaults[j].Timestamp {
			return vaults[i].Timestamp > vaults[j].Timestamp
		}
		return vaults[i].ID < vaults[j].ID
	})
	return vaults
}

// Active returns the vault flagged open, if any.
func (d *Document) Active() (Vault, bool) {
	for _, v := range d.Vaults() {
		if v.Open {
			return v, true
		}
	}
	return Vault{}, false
}

func (d *Document) findByPath(abs string) (string, bool) {
	var found string
	gjson.GetBytes(d.raw, vaultsKey).ForEach(func(key, value gjson.Result) bool {
		if samePath(value.Get("path").String(), abs) {
			found = key.String()
			return false
		}
		return true
	})
	return found, found != ""
}

func (d *Document) ensureVaults() error {
	if gjson.GetBytes(d.raw, vaultsKey).Exists() {
		return nil
	}
	raw, err := sjson.SetRawBytes(d.raw, vaultsKey, []byte("{}"))
	if err != nil {
		return fmt.Errorf("%w: add %q: %w", apperr.ErrParse, vaultsKey, err)
	}
	d.raw = raw
	return nil
}

func (d *Document) set(p string, value any) error {
	raw, err := sjson.SetBytes(d.raw, p, value)
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", apperr.ErrParse, p, err)
	}
	d.raw = raw
	return nil
}

func vaultPath(id string) string {
	return vaultsKey + "." + escapeKey(id)
}

func fieldPath(id, field string) string {
	return vaultPath(id) + "." + field
}

// escapeKey protects path metacharacters in object keys written by other tools.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!=<>%:`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
