// Package tinkfpe sources fpe key material from a Tink keyset, so a
// key can be generated, rotated, and stored with Tink's usual
// keyset/registry machinery instead of a bespoke format.
//
// Unlike most Tink primitives, the "primitive" a keyset produces here
// is not a ready-to-use cipher: it's the raw key bytes, wrapped in an
// *fpe.Key. Callers still choose a MessageSpace and an IntegerCipher
// (or let RankThenEncipher choose one) around that key, since fpe.Key
// is deliberately cipher-agnostic.
package tinkfpe

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	tinkpb "github.com/google/tink/go/proto/tink_go_proto"
	"google.golang.org/protobuf/proto"

	"github.com/vdparikh/gofpe"
)

// KeyTypeURL identifies raw FPE key material in Tink's registry.
const KeyTypeURL = "type.googleapis.com/gofpe.RawKey"

// defaultKeyLengthBytes is used when a key template doesn't specify a
// length.
const defaultKeyLengthBytes = 32

// KeyManager implements registry.KeyManager for raw FPE key material.
type KeyManager struct{}

// NewKeyManager returns a new, stateless KeyManager.
func NewKeyManager() *KeyManager {
	return &KeyManager{}
}

// Primitive returns an *fpe.Key wrapping serializedKey.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	if len(serializedKey) == 0 {
		return nil, fmt.Errorf("tinkfpe: key material must not be empty")
	}
	return fpe.NewKey(serializedKey)
}

// DoesSupport implements registry.KeyManager.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == KeyTypeURL
}

// TypeURL implements registry.KeyManager.
func (km *KeyManager) TypeURL() string {
	return KeyTypeURL
}

// NewKey is unsupported: this manager always generates key material
// through NewKeyData, which returns a protobuf KeyData directly
// rather than a typed key message (there is no FPE-specific key
// proto to populate).
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	return nil, fmt.Errorf("tinkfpe: NewKey is not supported, use NewKeyData")
}

// NewKeyData generates lengthBytes (encoded as the template's single
// value byte, defaulting to defaultKeyLengthBytes) of random key
// material.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tinkpb.KeyData, error) {
	length := defaultKeyLengthBytes
	if len(serializedKeyTemplate) > 0 {
		length = int(serializedKeyTemplate[0])
	}
	if length <= 0 {
		return nil, fmt.Errorf("tinkfpe: key length must be positive, got %d", length)
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("tinkfpe: generating key material: %w", err)
	}
	return &tinkpb.KeyData{
		TypeUrl:         KeyTypeURL,
		Value:           key,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}, nil
}

var _ registry.KeyManager = (*KeyManager)(nil)

// KeyTemplate builds a key template that generates lengthBytes of raw
// key material (lengthBytes must fit in a byte, i.e. be at most 255;
// callers wanting a longer base key should derive it from a shorter
// one with Key.Derive instead of templating it directly).
func KeyTemplate(lengthBytes int) *tinkpb.KeyTemplate {
	if lengthBytes <= 0 || lengthBytes > 255 {
		lengthBytes = defaultKeyLengthBytes
	}
	return &tinkpb.KeyTemplate{
		TypeUrl:          KeyTypeURL,
		Value:            []byte{byte(lengthBytes)},
		OutputPrefixType: tinkpb.OutputPrefixType_RAW,
	}
}

// randomKeyID returns a random, non-zero key ID suitable for a
// single-key keyset.
func randomKeyID() (uint32, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return 0, fmt.Errorf("tinkfpe: generating key id: %w", err)
	}
	id := binary.BigEndian.Uint32(b)
	if id == 0 {
		id = 1
	}
	return id, nil
}
