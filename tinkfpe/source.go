package tinkfpe

import (
	"fmt"
	"sync"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	tinkpb "github.com/google/tink/go/proto/tink_go_proto"

	"github.com/vdparikh/gofpe"
)

var registerOnce sync.Once

// ensureRegistered registers KeyManager with Tink's global registry,
// exactly once per process. Handle.Primitives() needs the manager
// registered to turn a keyset's raw key bytes back into a primitive.
// Registration is not done in init(): KeyFromHandle, the only caller of
// Primitives() here, triggers it on first use, so a caller that only
// uses NewKeysetHandleFromKey never touches the global registry.
func ensureRegistered() {
	registerOnce.Do(func() {
		_ = registry.RegisterKeyManager(NewKeyManager())
	})
}

// NewKeysetHandleFromKey wraps an already-existing raw key (sourced
// from an HSM, a secret manager, or any other out-of-band channel) in
// a single-key, unencrypted Tink keyset handle.
//
// The returned handle holds cleartext key material in memory; callers
// persisting it should encrypt it first with keyset.Write and an
// AEAD, the same as any other Tink keyset.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("tinkfpe: key material must not be empty")
	}

	keyID, err := randomKeyID()
	if err != nil {
		return nil, err
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         KeyTypeURL,
		Value:           key,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}
	keysetKey := &tinkpb.Keyset_Key{
		KeyData:          keyData,
		KeyId:            keyID,
		Status:           tinkpb.KeyStatusType_ENABLED,
		OutputPrefixType: tinkpb.OutputPrefixType_RAW,
	}
	ks := &tinkpb.Keyset{
		PrimaryKeyId: keyID,
		Key:          []*tinkpb.Keyset_Key{keysetKey},
	}

	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}

// KeyFromHandle extracts the primary key's raw material from handle
// and wraps it in an *fpe.Key.
func KeyFromHandle(handle *keyset.Handle) (*fpe.Key, error) {
	if handle == nil {
		return nil, fmt.Errorf("tinkfpe: keyset handle must not be nil")
	}
	ensureRegistered()

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("tinkfpe: reading primitives: %w", err)
	}
	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("tinkfpe: keyset has no primary key")
	}

	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	for _, k := range ks.Key {
		if k.KeyId != primary.KeyID {
			continue
		}
		keyData := k.KeyData
		if keyData == nil || keyData.GetKeyMaterialType() != tinkpb.KeyData_SYMMETRIC {
			continue
		}
		return fpe.NewKey(keyData.Value)
	}
	return nil, fmt.Errorf("tinkfpe: no symmetric key material found for key id %d", primary.KeyID)
}
