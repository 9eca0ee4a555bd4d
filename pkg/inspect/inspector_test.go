package inspect

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/apkinspect/internal/errors"
	"github.com/huanfeng/apkinspect/pkg/apk"
	"github.com/huanfeng/apkinspect/pkg/compliance"
	"github.com/huanfeng/apkinspect/pkg/models"
	"github.com/huanfeng/apkinspect/pkg/signature"
	"github.com/huanfeng/apkinspect/pkg/toolchain"
	"github.com/huanfeng/apkinspect/pkg/utils"
)

const posBadging = `package: name='com.acme.pos' versionCode='42' versionName='2.3.0' platformBuildVersionName='14'
sdkVersion:'24'
targetSdkVersion:'34'
uses-permission: name='android.permission.INTERNET'
uses-permission: name='android.permission.NFC'
application-label:'Acme POS'
application: label='Acme POS' icon='res/mipmap/ic_launcher.png'
native-code: 'arm64-v8a'
`

const posSigner = `Verifies
Verified using v1 scheme (JAR signing): true
Verified using v2 scheme (APK Signature Scheme v2): true
Signer #1 certificate DN: CN=Release, O=Acme Corp
Signer #1 certificate SHA-256 digest: abcdef
`

// fakeRunner answers from a table; missing tools get the not-found sentinel
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[toolchain.Tool]string
	calls   map[toolchain.Tool][]string
}

func newFakeRunner(outputs map[toolchain.Tool]string) *fakeRunner {
	return &fakeRunner{outputs: outputs, calls: make(map[toolchain.Tool][]string)}
}

func (f *fakeRunner) Run(_ context.Context, tool toolchain.Tool, args ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tool] = args
	if out, ok := f.outputs[tool]; ok {
		return out
	}
	return "Error: " + string(tool) + " not found"
}

func writeAPK(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("AndroidManifest.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte{0x03, 0x00, 0x08, 0x00})
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func newInspector(runner toolchain.Runner, logger utils.Logger, opts ...Option) *Inspector {
	return New(runner, apk.NewDefaultOrchestrator(logger), signature.NewParser(logger), logger, opts...)
}

func TestInspector_FullRun(t *testing.T) {
	base := logrus.New()
	hook := test.NewLocal(base)
	path := writeAPK(t, "acme-pos-release-2.3.0.apk")

	runner := newFakeRunner(map[toolchain.Tool]string{
		toolchain.AAPT:      posBadging,
		toolchain.APKSigner: posSigner,
	})
	ins := newInspector(runner, utils.NewLoggerFrom(base), WithAnalyzer(compliance.NewEngine()))

	a, err := ins.Inspect(context.Background(), path)
	require.NoError(t, err)

	_, err = uuid.Parse(a.RunID)
	assert.NoError(t, err)
	assert.Equal(t, path, a.APKFile)
	assert.Equal(t, "com.acme.pos", a.Metadata.Package)
	assert.Equal(t, models.ExtractionAAPT, a.Metadata.ExtractionMethod)
	assert.Equal(t, []string{"arm64-v8a"}, a.Metadata.Architectures)
	assert.Equal(t, apk.BuildModeRelease, a.BuildMode)
	assert.Equal(t, "Acme Corp", a.Signature.Company)
	assert.Equal(t, []string{"v1", "v2"}, a.Signature.SignatureVersions)
	assert.Equal(t, apk.ConfidenceHigh, a.Quality.Confidence)
	assert.Empty(t, a.Skipped)
	assert.Nil(t, a.Raw)

	require.NotNil(t, a.Compliance)
	assert.True(t, a.Compliance.HasCategory(models.CategoryContactlessPay))

	require.NotNil(t, a.Digests)
	assert.Len(t, a.Digests.SHA256, 64)

	assert.Equal(t, toolchain.APKSignerArgs(path), runner.calls[toolchain.APKSigner])
	assert.Equal(t, toolchain.JarSignerArgs(path), runner.calls[toolchain.JarSigner])

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "Starting analysis", entries[0].Message)
	assert.Equal(t, a.RunID, entries[0].Data["run_id"])
	assert.Equal(t, a.RunID, hook.LastEntry().Data["run_id"])
}

func TestInspector_WithoutAnalyzer(t *testing.T) {
	path := writeAPK(t, "pos.apk")
	runner := newFakeRunner(map[toolchain.Tool]string{toolchain.AAPT: posBadging})

	a, err := newInspector(runner, nil, WithRawOutput(true)).Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Nil(t, a.Compliance)
	require.NotNil(t, a.Raw)
	assert.Equal(t, posBadging, a.Raw.AAPT)
	assert.Equal(t, "Error: aapt2 not found", a.Raw.AAPT2)
	assert.False(t, a.Signature.IsValid)
}

func TestInspector_FallsBackAndRecordsSkips(t *testing.T) {
	path := writeAPK(t, "acme-pos-debug-2.3.0.apk")
	runner := newFakeRunner(map[toolchain.Tool]string{toolchain.AAPT2: posBadging})

	a, err := newInspector(runner, nil).Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionAAPT2, a.Metadata.ExtractionMethod)
	require.Len(t, a.Skipped, 1)
	assert.Contains(t, a.Skipped[0], "aapt:")
	assert.Equal(t, apk.BuildModeDebug, a.BuildMode, "filename carries -debug-")
}

func TestInspector_InvalidPath(t *testing.T) {
	runner := newFakeRunner(nil)
	missing := filepath.Join(t.TempDir(), "gone.apk")

	a, err := newInspector(runner, nil, WithAnalyzer(compliance.NewEngine())).Inspect(context.Background(), missing)
	assert.Nil(t, a)
	assert.True(t, errors.HasCode(err, errors.CodeAPKPathInvalid))
}

func TestInspector_RecordsIdenticalAcrossRuns(t *testing.T) {
	path := writeAPK(t, "pos.apk")
	runner := newFakeRunner(map[toolchain.Tool]string{
		toolchain.AAPT:      posBadging,
		toolchain.APKSigner: posSigner,
	})
	ins := newInspector(runner, nil, WithAnalyzer(compliance.NewEngine()))

	first, err := ins.Inspect(context.Background(), path)
	require.NoError(t, err)
	second, err := ins.Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Metadata, second.Metadata)
	assert.Equal(t, first.Signature, second.Signature)
	assert.Equal(t, first.Compliance, second.Compliance)
}

func TestInspector_MetadataOnly(t *testing.T) {
	path := writeAPK(t, "pos.apk")
	runner := newFakeRunner(map[toolchain.Tool]string{
		toolchain.AAPT:      posBadging,
		toolchain.APKSigner: posSigner,
	})

	a, err := newInspector(runner, nil, WithAnalyzer(compliance.NewEngine())).InspectMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "com.acme.pos", a.Metadata.Package)
	assert.NotNil(t, a.Quality)
	assert.Nil(t, a.Signature)
	assert.Nil(t, a.Compliance)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.NotContains(t, runner.calls, toolchain.APKSigner)
	assert.NotContains(t, runner.calls, toolchain.JarSigner)
}
