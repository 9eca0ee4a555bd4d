package apk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huanfeng/apkinspect/pkg/models"
)

func TestIsUsableOutput(t *testing.T) {
	assert.True(t, IsUsableOutput("package: name='com.x.y'"))
	assert.True(t, IsUsableOutput("sm  1204 Mon Jan 01 res/layout/error_view.xml"))

	for _, s := range []string{
		"",
		"   \n",
		"ERROR: dump failed because no AndroidManifest.xml found",
		"aapt not found",
		"apksigner: no encontrado",
		"Build-tools no configurado",
		"tool unavailable",
	} {
		assert.False(t, IsUsableOutput(s), s)
	}
}

func TestIsUsableListing(t *testing.T) {
	listing := `
s k     1204 Mon Jan 01 10:00:00 CET 2024 META-INF/MANIFEST.MF
sm      2201 Mon Jan 01 10:00:00 CET 2024 res/drawable/error.png

jar verified.
`
	assert.True(t, IsUsableListing(listing))
	assert.False(t, IsUsableOutput(listing))

	for _, s := range []string{
		"",
		"\n  \n",
		"Error: jarsigner not found",
		"Error: jarsigner timed out after 30s",
		"jarsigner error: java.util.zip.ZipException: zip END header not found",
		"jarsigner no encontrado",
	} {
		assert.False(t, IsUsableListing(s), s)
	}
}

func TestKeyedQuoted(t *testing.T) {
	line := "package: name='com.x.y' versionCode='3' versionName='1.2'"

	v, ok := KeyedQuoted(line, "name")
	assert.True(t, ok)
	assert.Equal(t, "com.x.y", v)

	v, ok = KeyedQuoted(line, "versionName")
	assert.True(t, ok)
	assert.Equal(t, "1.2", v)

	_, ok = KeyedQuoted(line, "compileSdkVersion")
	assert.False(t, ok)

	v, ok = KeyedQuoted("uses-library: name='org.apache.http' required='false'", "required")
	assert.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestFirstQuotedAndList(t *testing.T) {
	v, ok := FirstQuoted("targetSdkVersion:'34'")
	assert.True(t, ok)
	assert.Equal(t, "34", v)

	_, ok = FirstQuoted("targetSdkVersion:34")
	assert.False(t, ok)

	assert.Equal(t, []string{"arm64-v8a", "x86_64"}, QuotedList("native-code: 'arm64-v8a' '' 'x86_64'"))
	assert.Nil(t, QuotedList("native-code:"))
}

func TestAfterPrefix(t *testing.T) {
	v, ok := AfterPrefix("Signer #1 certificate DN: CN=Acme, O=Acme Corp", "certificate DN:")
	assert.True(t, ok)
	assert.Equal(t, "CN=Acme, O=Acme Corp", v)

	_, ok = AfterPrefix("nothing here", "certificate DN:")
	assert.False(t, ok)
}

func TestDetectBuildFlags(t *testing.T) {
	flags := DetectBuildFlags("application-debuggable\n")
	assert.True(t, flags.Debuggable)
	assert.Nil(t, flags.AllowBackup)

	flags = DetectBuildFlags(`A: android:debuggable(0x0101000f)=(type 0x12)0xffffffff`)
	assert.True(t, flags.Debuggable)

	flags = DetectBuildFlags(`android:debuggable="true"` + "\n" + `android:allowBackup="false"` + "\n" + `android:allowBackup="true"`)
	assert.True(t, flags.Debuggable)
	if assert.NotNil(t, flags.AllowBackup) {
		assert.False(t, *flags.AllowBackup)
	}

	flags = DetectBuildFlags(`debuggable(0x0101000f)=(type 0x12)0x0`)
	assert.False(t, flags.Debuggable)
}

func TestBuildMode(t *testing.T) {
	meta := models.NewApkMetadata()
	meta.Package = "com.acme.wallet"
	meta.VersionName = "3.1.0"
	meta.AppLabel = "Wallet"
	assert.Equal(t, BuildModeRelease, BuildMode(meta, "wallet.apk"))
	assert.Equal(t, BuildModeDebug, BuildMode(meta, "wallet-staging.apk"))

	meta.Debuggable = true
	assert.Equal(t, BuildModeDebug, BuildMode(meta, "wallet.apk"))

	meta = models.NewApkMetadata()
	meta.Package = "com.acme.pos"
	meta.FillUndetected()
	assert.Equal(t, BuildModeRelease, BuildMode(meta, "x.apk"))

	meta.Package = "com.acme.wallet.demo"
	assert.Equal(t, BuildModeDebug, BuildMode(meta, "x.apk"))

	assert.Equal(t, BuildModeRelease, BuildMode(nil, ""))
}
