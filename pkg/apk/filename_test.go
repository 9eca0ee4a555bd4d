package apk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessFromFilename(t *testing.T) {
	tests := []struct {
		path    string
		label   string
		version string
		debug   bool
	}{
		{"/tmp/myapp-debug-1.2.0.apk", "Myapp", "1.2.0", true},
		{"builds/wallet-release-2.4.1.apk", "Wallet", "2.4.1", false},
		{"super-app-v3.0.apk", "Super App", "3.0", false},
		{"super_app_v7.apk", "Super App", "7", false},
		{"MyBank-debug.apk", "MyBank", "", true},
		{"pos_terminal-unsigned.APK", "Pos Terminal", "", false},
		{"scanner-release-unsigned.apk", "Scanner", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			guess, ok := GuessFromFilename(tt.path)
			assert.True(t, ok)
			assert.Equal(t, tt.label, guess.Label)
			assert.Equal(t, tt.version, guess.Version)
			assert.Equal(t, tt.debug, guess.Debug)
		})
	}
}

func TestGuessFromFilename_Unusable(t *testing.T) {
	for _, path := range []string{"", ".apk", "/", "---.apk"} {
		_, ok := GuessFromFilename(path)
		assert.False(t, ok, path)
	}
}

func TestPackageFromFilename(t *testing.T) {
	assert.Equal(t, "com.acme.wallet", PackageFromFilename("com.acme.Wallet-release-2.0.apk"))
	assert.Equal(t, "my.bank", PackageFromFilename("My Bank.apk"))
	assert.Equal(t, "", PackageFromFilename(""))
}
