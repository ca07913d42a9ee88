package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewEncryptor(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		wantNil    bool
	}{
		{
			name:       "valid passphrase",
			passphrase: "strong-passphrase-123",
			wantNil:    false,
		},
		{
			name:       "empty passphrase returns nil",
			passphrase: "",
			wantNil:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewEncryptor(tt.passphrase)
			if tt.wantNil && enc != nil {
				t.Errorf("NewEncryptor() = %v, want nil", enc)
			}
			if !tt.wantNil && enc == nil {
				t.Error("NewEncryptor() = nil, want non-nil")
			}
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	enc := NewEncryptor("test-passphrase")

	tests := []struct {
		name      string
		plaintext string
	}{
		{"snapshot", `{"id":"10553003","coder":"alice","accepted":true}`},
		{"empty", ""},
		{"cyrillic", `{"verdict":"Неправильный ответ"}`},
		{"long", strings.Repeat("0123456789", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := enc.Encrypt([]byte(tt.plaintext))
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !IsSealed(sealed) {
				t.Errorf("Encrypt() output %q lacks the sealed prefix", sealed)
			}
			if tt.plaintext != "" && bytes.Contains(sealed, []byte(tt.plaintext)) {
				t.Error("sealed value contains the plaintext")
			}

			opened, err := enc.Decrypt(sealed)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if string(opened) != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestEncrypt_Nonce(t *testing.T) {
	enc := NewEncryptor("test-passphrase")
	a, _ := enc.Encrypt([]byte("same"))
	b, _ := enc.Encrypt([]byte("same"))
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same value should differ")
	}
}

func TestDecrypt_PlainValuesPassThrough(t *testing.T) {
	plain := []byte(`{"id":"1"}`)

	for _, enc := range []*Encryptor{nil, NewEncryptor("key")} {
		got, err := enc.Decrypt(plain)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(got, plain) {
			t.Errorf("Decrypt() = %q, want %q", got, plain)
		}
	}
}

func TestNilEncryptor_EncryptIsIdentity(t *testing.T) {
	var enc *Encryptor
	got, err := enc.Encrypt([]byte("x"))
	if err != nil || string(got) != "x" {
		t.Errorf("Encrypt() = %q, %v", got, err)
	}
}

func TestDecrypt_Failures(t *testing.T) {
	enc := NewEncryptor("right")
	sealed, err := enc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	t.Run("wrong key", func(t *testing.T) {
		if _, err := NewEncryptor("wrong").Decrypt(sealed); err == nil {
			t.Error("Decrypt() with wrong key should fail")
		}
	})

	t.Run("no key", func(t *testing.T) {
		var none *Encryptor
		if _, err := none.Decrypt(sealed); err == nil {
			t.Error("Decrypt() without key should fail on sealed value")
		}
	})

	t.Run("bad base64", func(t *testing.T) {
		if _, err := enc.Decrypt([]byte(sealedPrefix + "!!!")); err == nil {
			t.Error("Decrypt() should reject invalid base64")
		}
	})

	t.Run("too short", func(t *testing.T) {
		_, err := enc.Decrypt([]byte(sealedPrefix + "AAAA"))
		if !errors.Is(err, ErrCiphertextTooShort) {
			t.Errorf("Decrypt() error = %v, want ErrCiphertextTooShort", err)
		}
	})
}
