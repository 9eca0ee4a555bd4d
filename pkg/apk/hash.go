package apk

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// FileDigests hashes the APK file in a single pass
func FileDigests(path string) (*models.FileDigests, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open APK for hashing: %w", err)
	}
	defer file.Close()

	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sha256Hash := sha256.New()

	size, err := io.Copy(io.MultiWriter(md5Hash, sha1Hash, sha256Hash), file)
	if err != nil {
		return nil, fmt.Errorf("failed to hash APK: %w", err)
	}

	return &models.FileDigests{
		Size:   size,
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1Hash.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
	}, nil
}
