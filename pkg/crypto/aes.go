// Package crypto — AES-256-GCM şifreleme/çözümleme fonksiyonları.
//
// Bearer token'ı lokal SQLite store'da düz metin saklamak yerine
// şifreleyerek saklamak için kullanılır. Makine paylaşımlı senaryolarda
// dosyayı okuyan başka bir process token'ı doğrudan ele geçiremez.
//
// AES-256-GCM nedir?
// - AES-256: 256-bit anahtar ile şifreleme (symmetric encryption)
// - GCM (Galois/Counter Mode): hem gizlilik hem bütünlük sağlar (authenticated encryption)
// - Nonce: her şifreleme için rastgele üretilen 12-byte değer — aynı key ile bile
//   her ciphertext farklı olur
//
// Anahtar türetme:
// Kullanıcıdan 64-hex-karakterlik anahtar istemek client için pratik değil.
// DeriveKey, herhangi bir uzunluktaki secret'ten scrypt ile 32-byte
// anahtar türetir — scrypt bellek-maliyetli bir KDF'dir, brute-force'u
// zorlaştırır.
//
// Kullanım:
//   key, _ := crypto.DeriveKey("local-secret", salt)
//   encrypted, _ := crypto.Encrypt("bearer-token", key)
//   decrypted, _ := crypto.Decrypt(encrypted, key)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// KeySize — AES-256 anahtar boyutu (byte).
const KeySize = 32

// SaltSize — scrypt salt boyutu (byte).
const SaltSize = 16

// NewSalt, rastgele bir scrypt salt'ı üretir.
// Salt gizli değildir — şifreli token'ın yanında düz saklanır.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return salt, nil
}

// DeriveKey, secret + salt'tan scrypt ile 32-byte AES-256 anahtarı türetir.
// Parametreler (N=32768, r=8, p=1) interaktif kullanım için standart
// scrypt önerisidir.
func DeriveKey(secret string, salt []byte) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret must not be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be exactly %d bytes, got %d", SaltSize, len(salt))
	}

	key, err := scrypt.Key([]byte(secret), salt, 32768, 8, 1, KeySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation: %w", err)
	}
	return key, nil
}

// Encrypt, plaintext'i AES-256-GCM ile şifreler.
// Dönen string base64-encoded: nonce (12 byte) + ciphertext.
func Encrypt(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	// Nonce: her şifreleme için rastgele 12-byte değer.
	// GCM standard nonce size = 12 byte.
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	// Seal: nonce + ciphertext + authentication tag birleştirilir.
	// İlk parametre (dst): nonce'u prefix olarak ekle.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt, AES-256-GCM ile şifrelenmiş base64 string'i çözer.
func Decrypt(encoded string, key []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	// İlk 12 byte = nonce, gerisi = ciphertext + auth tag
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open (decryption failed — wrong key or corrupted data): %w", err)
	}

	return string(plaintext), nil
}
