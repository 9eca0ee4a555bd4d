package apk

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/apkinspect/pkg/utils"
)

const walletBadging = `package: name='com.acme.wallet' versionCode='42' versionName='3.1.0' platformBuildVersionName='14' compileSdkVersion='34'
sdkVersion:'24'
targetSdkVersion:'34'
uses-permission: name='android.permission.INTERNET'
uses-permission: name='android.permission.NFC'
uses-permission: name='android.permission.INTERNET'
uses-permission-sdk-23: name='android.permission.ACCESS_FINE_LOCATION'
uses-feature: name='android.hardware.nfc'
application-label-es:'Billetera Acme'
application-label:'Acme Wallet'
application: label='Acme Wallet' icon='res/mipmap/ic_launcher.png'
launchable-activity: name='com.acme.wallet.MainActivity'  label='' icon=''
densities: '160' '240' '320'
native-code: 'arm64-v8a' 'armeabi-v7a'
`

func TestBadgingParser_Package(t *testing.T) {
	text := "sdkVersion:'21'\n" +
		"package: name='com.x.y' versionCode='3' versionName='1.2'\n" +
		"some unrelated line\n"

	meta := NewBadgingParser(nil).Parse(text)

	assert.Equal(t, "com.x.y", meta.Package)
	assert.Equal(t, "3", meta.VersionCode)
	assert.Equal(t, "1.2", meta.VersionName)
	assert.Equal(t, "21", meta.MinSDK)
}

func TestBadgingParser_FullDump(t *testing.T) {
	meta := NewBadgingParser(nil).Parse(walletBadging)

	assert.Equal(t, "com.acme.wallet", meta.Package)
	assert.Equal(t, "42", meta.VersionCode)
	assert.Equal(t, "3.1.0", meta.VersionName)
	assert.Equal(t, "14", meta.PlatformBuildVersion)
	assert.Equal(t, "34", meta.CompileSDK)
	assert.Equal(t, "24", meta.MinSDK)
	assert.Equal(t, "34", meta.TargetSDK)
	assert.Equal(t, "Acme Wallet", meta.AppLabel)
	assert.Equal(t, []string{
		"android.permission.INTERNET",
		"android.permission.NFC",
		"android.permission.ACCESS_FINE_LOCATION",
	}, meta.Permissions)
	assert.Equal(t, []string{"android.hardware.nfc"}, meta.Features)
	assert.Equal(t, []string{"160", "240", "320"}, meta.Densities)
	assert.True(t, meta.NativeLibraries)
	assert.Equal(t, []string{"arm64-v8a", "armeabi-v7a"}, meta.Architectures)
	assert.False(t, meta.Debuggable)
	assert.True(t, meta.AllowBackup)
}

func TestBadgingParser_MissingSubField(t *testing.T) {
	meta := NewBadgingParser(nil).Parse("package: name='com.only.name' versionName='2.0'\n")

	assert.Equal(t, "com.only.name", meta.Package)
	assert.Equal(t, "2.0", meta.VersionName)
	assert.Empty(t, meta.VersionCode)
}

func TestBadgingParser_LabelPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "unlocalized wins over earlier locale",
			text: "application-label-fr:'Portefeuille'\napplication-label:'Wallet'\n",
			want: "Wallet",
		},
		{
			name: "locale ignored after unlocalized",
			text: "application-label:'Wallet'\napplication-label-de:'Geldbörse'\n",
			want: "Wallet",
		},
		{
			name: "first locale used as fallback",
			text: "application-label-es:'Billetera'\napplication-label-fr:'Portefeuille'\n",
			want: "Billetera",
		},
		{
			name: "application line as last fallback",
			text: "application: label='Wallet' icon='x.png'\n",
			want: "Wallet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewBadgingParser(nil).Parse(tt.text)
			assert.Equal(t, tt.want, meta.AppLabel)
		})
	}
}

func TestBadgingParser_MalformedLinesAreSkipped(t *testing.T) {
	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	hook := test.NewLocal(base)
	logger := utils.NewLoggerFrom(base)

	text := "package: name='com.x.y' versionCode='3'\n" +
		"targetSdkVersion:34\n" +
		"uses-permission: name=android.permission.CAMERA\n" +
		"application-label:'Camera'\n" +
		"uses-permission: name='android.permission.INTERNET'\n"

	meta := NewBadgingParser(logger).Parse(text)

	assert.Equal(t, "com.x.y", meta.Package)
	assert.Equal(t, "Camera", meta.AppLabel)
	assert.Empty(t, meta.TargetSDK)
	assert.Equal(t, []string{"android.permission.INTERNET"}, meta.Permissions)

	malformed := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel && strings.Contains(e.Message, "malformed badging line") {
			malformed++
		}
	}
	assert.Equal(t, 2, malformed)
}

func TestBadgingParser_LegacyPermissionFormat(t *testing.T) {
	meta := NewBadgingParser(nil).Parse("uses-permission:'android.permission.CAMERA'\n")
	require.Len(t, meta.Permissions, 1)
	assert.Equal(t, "android.permission.CAMERA", meta.Permissions[0])
}

func TestBadgingParser_DebugFlags(t *testing.T) {
	text := "package: name='com.x.y'\napplication-debuggable\n" +
		`E: application (line=12) A: android:allowBackup="false"` + "\n"

	meta := NewBadgingParser(nil).Parse(text)

	assert.True(t, meta.Debuggable)
	assert.False(t, meta.AllowBackup)
}
