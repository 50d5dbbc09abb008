// Package store persists source-collection records as encrypted blobs on
// disk and streams change notifications so feeds can react to writes.
package store

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/agenda/pkg/crypto"
)

// Record is one decrypted collection document. The engine treats every
// field it does not model as opaque and carries it through on writes.
type Record = map[string]any

// Persistence is the storage contract for all write-target collections and
// the calendar mirror. Upsert merges fields over whatever is already stored;
// a missing or stale document is recreated, never an error.
type Persistence interface {
	List(ctx context.Context, collection string) []Record
	Get(ctx context.Context, collection, id string) (Record, bool)
	Upsert(collection, id string, fields Record) error
	Put(collection string, record Record) error
	Delete(collection, id string) error
	ReplaceMatching(ctx context.Context, collection string, match func(Record) bool, records []Record) error
	Collections(ctx context.Context) []string
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv, scoped to one user and sealed
// with the provided cipher.
func Load(cfg Config, cipher crypto.Cipher) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	if cipher == nil {
		cipher = crypto.Plaintext()
	}

	basePath := cfg.BasePath()
	if user := cfg.User(); user != "" {
		basePath = filepath.Join(basePath, user)
	}
	return &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		cipher:   cipher,
	}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	cipher   crypto.Cipher
}

func (p *persistence) read(key string) (Record, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	plain, err := p.cipher.Decrypt(val)
	if err != nil {
		return nil, err
	}
	record := Record{}
	if err := json.Unmarshal(plain, &record); err != nil {
		return nil, err
	}
	pk := keyToPathTransform(key)
	record["id"] = pk.FileName
	return record, nil
}

func (p *persistence) write(collection, id string, record Record) error {
	record["id"] = id
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	sealed, err := p.cipher.Encrypt(data)
	if err != nil {
		return err
	}
	return p.d.Write(toKey(collection, id), sealed)
}

func (p *persistence) List(ctx context.Context, collection string) []Record {
	ck := toCollection(collection)
	all := make([]Record, 0)
	for key := range p.d.Keys(ctx.Done()) {
		if pk := keyToPathTransform(key); pk.Path[0] != ck {
			continue
		}
		record, err := p.read(key)
		if err != nil {
			// A record that fails decryption or decoding is skipped, not
			// fatal; the rest of the batch stays usable.
			fmt.Fprintf(os.Stderr, "store: %s: %s\n", key, err)
			continue
		}
		all = append(all, record)
	}
	sortRecords(all)
	return all
}

func (p *persistence) Get(_ context.Context, collection, id string) (Record, bool) {
	record, err := p.read(toKey(collection, id))
	if err != nil {
		return nil, false
	}
	return record, true
}

// Upsert merges fields over the stored document. Unknown stored fields are
// preserved; a concurrently deleted document is recreated from the fields.
func (p *persistence) Upsert(collection, id string, fields Record) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("store: record id required")
	}
	merged := Record{}
	if existing, err := p.read(toKey(collection, id)); err == nil {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return p.write(collection, id, merged)
}

// Put stores a record whole, generating an id when the record has none.
func (p *persistence) Put(collection string, record Record) error {
	id, _ := record["id"].(string)
	if id == "" {
		b, _ := json.Marshal(record)
		sum := md5.Sum(b)
		id = fmt.Sprintf("%x", sum[:8])
	}
	return p.write(collection, id, record)
}

func (p *persistence) Delete(collection, id string) error {
	return p.d.Erase(toKey(collection, id))
}

// ReplaceMatching swaps the slice of a collection selected by match for the
// provided records, keyed by their ids. Running it twice with unchanged
// input leaves the collection identical (upsert by id, not append).
func (p *persistence) ReplaceMatching(ctx context.Context, collection string, match func(Record) bool, records []Record) error {
	keep := make(map[string]bool, len(records))
	for _, record := range records {
		if id, _ := record["id"].(string); id != "" {
			keep[id] = true
		}
	}
	for _, existing := range p.List(ctx, collection) {
		if match != nil && !match(existing) {
			continue
		}
		id, _ := existing["id"].(string)
		if id == "" || keep[id] {
			continue
		}
		if err := p.Delete(collection, id); err != nil {
			return fmt.Errorf("store: replace %s: %w", collection, err)
		}
	}
	for _, record := range records {
		if err := p.Put(collection, record); err != nil {
			return fmt.Errorf("store: replace %s: %w", collection, err)
		}
	}
	return nil
}

func (p *persistence) Collections(ctx context.Context) []string {
	seen := make(map[string]bool)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		seen[fromCollection(pk.Path[0])] = true
	}
	list := make([]string, 0, len(seen))
	for name := range seen {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		li, _ := records[i]["id"].(string)
		rj, _ := records[j]["id"].(string)
		return li < rj
	})
}

// Keys are `b64(collection)/id`; the id is the file name, so ids keep any
// characters other than the separator across the round trip.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 1 {
		return &diskv.PathKey{Path: []string{""}, FileName: parts[0]}
	}
	return &diskv.PathKey{
		Path:     []string{parts[0]},
		FileName: parts[1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

func toKey(collection, id string) string {
	return fmt.Sprintf("%s/%s", toCollection(collection), id)
}

func toCollection(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func fromCollection(s string) string {
	collection, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return fmt.Sprintf("fromCollection: %s", err)
	}
	return string(collection)
}
