package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/waveio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRamp writes a file whose channel values are frame*10 and -frame*10.
func writeRamp(t *testing.T, path string, cfg waveio.WriterConfig, frames int) {
	t.Helper()

	err := waveio.WriteFile(path, cfg, func(w *waveio.Writer) error {
		for i := 0; i < frames; i++ {
			s := waveio.Mono(int16(i * 10))
			if w.WaveFormat().NumChannels == 2 {
				s = waveio.Stereo(int16(i*10), int16(-i*10))
			}

			if err := w.Set(i, s); err != nil {
				return err
			}
		}

		return nil
	})
	require.NoError(t, err)
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func readAll(t *testing.T, path string) (*waveio.Reader, []int16) {
	t.Helper()

	rd, err := waveio.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { rd.Close() })

	block, err := rd.ReadAll()
	require.NoError(t, err)

	return rd, block.Data
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"info", "slice", "toaiff"})
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("writer-sample-rate"))
}

func TestInfoCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeRamp(t, path, waveio.WriterConfig{SampleRate: 8000, NumChannels: 2}, 4000)

	out, _, err := runCmd(t, "info", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Channels: 2\n")
	assert.Contains(t, out, "SampleRate: 8000\n")
	assert.Contains(t, out, "BitsPerSample: 16\n")
	assert.Contains(t, out, "Frames: 4000\n")
	assert.Contains(t, out, "Duration: 500ms\n")
	assert.Contains(t, out, `"fact"`)
	assert.Contains(t, out, `"data" at 56 (16000 bytes)`)
}

func TestInfoCmdErrors(t *testing.T) {
	_, _, err := runCmd(t, "info")
	require.Error(t, err)

	_, _, err = runCmd(t, "info", filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("RIFX0000WAVE"), 0o644))

	_, _, err = runCmd(t, "info", bad)
	require.ErrorIs(t, err, waveio.ErrFormat)
}

func TestSliceCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	writeRamp(t, in, waveio.WriterConfig{SampleRate: 1000}, 100)

	testCases := []struct {
		desc  string
		args  []string
		first int
		count int
	}{
		{"whole file", nil, 0, 100},
		{"frame range", []string{"--start=10", "--stop=20"}, 10, 10},
		{"tail", []string{"--start=-5"}, 95, 5},
		{"time range", []string{"--from=50ms", "--to=60ms"}, 50, 10},
		{"inverted", []string{"--start=30", "--stop=20"}, 0, 0},
	}

	for i, testCase := range testCases {
		t.Run(testCase.desc, func(t *testing.T) {
			out := filepath.Join(dir, fmt.Sprintf("out%d.wav", i))

			_, logs, err := runCmd(t, append([]string{"slice", in, out, "--log-level=info"}, testCase.args...)...)
			require.NoError(t, err)
			assert.Contains(t, logs, `"msg":"sliced"`)

			rd, data := readAll(t, out)
			assert.Equal(t, 1000, rd.SampleRate())
			require.Len(t, data, testCase.count)

			for j, v := range data {
				assert.Equal(t, int16((testCase.first+j)*10), v)
			}
		})
	}
}

func TestSliceCmdWriterOverrides(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeRamp(t, in, waveio.WriterConfig{SampleRate: 1000, NumChannels: 2}, 10)

	_, _, err := runCmd(t, "slice", in, out, "--writer-bits-per-sample=8", "--writer-sample-rate=2000")
	require.NoError(t, err)

	rd, data := readAll(t, out)
	assert.Equal(t, 8, rd.BitsPerSample())
	assert.Equal(t, 2000, rd.SampleRate())
	assert.Equal(t, []int{10, 2}, rd.Shape())
	assert.Equal(t, int16(0), data[0])

	_, _, err = runCmd(t, "slice", in, filepath.Join(dir, "mono.wav"), "--writer-channels=1")
	require.ErrorIs(t, err, errChannelChange)
}

func TestSliceCmdConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	writeRamp(t, in, waveio.WriterConfig{}, 3)

	cfgPath := filepath.Join(dir, "waveio.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("writer:\n  sample_rate: 12000\n"), 0o644))

	_, _, err := runCmd(t, "slice", in, out, "--config", cfgPath)
	require.NoError(t, err)

	rd, _ := readAll(t, out)
	assert.Equal(t, 12000, rd.SampleRate())

	require.NoError(t, os.WriteFile(cfgPath, []byte("writer:\n  tempo: 3\n"), 0o644))

	_, _, err = runCmd(t, "slice", in, out, "--config", cfgPath)
	require.ErrorIs(t, err, waveio.ErrInvalidConfig)
}

func TestToAIFFCmd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	writeRamp(t, in, waveio.WriterConfig{SampleRate: 22050, NumChannels: 2, BitsPerSample: 8}, 64)

	_, logs, err := runCmd(t, "toaiff", in)
	require.NoError(t, err)
	assert.Contains(t, logs, `"frames":64`)

	data, err := os.ReadFile(filepath.Join(dir, "in.aif"))
	require.NoError(t, err)
	require.Greater(t, len(data), 12)

	assert.Equal(t, "FORM", string(data[0:4]))
	assert.Equal(t, "AIFF", string(data[8:12]))

	comm := bytes.Index(data, []byte("COMM"))
	require.Positive(t, comm)
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(data[comm+8:]))
	assert.Positive(t, bytes.Index(data, []byte("SSND")))

	custom := filepath.Join(dir, "custom.aiff")
	_, _, err = runCmd(t, "toaiff", in, "-o", custom)
	require.NoError(t, err)
	assert.FileExists(t, custom)
}

func TestAIFFPath(t *testing.T) {
	assert.Equal(t, "a/b.aif", aiffPath("a/b.wav"))
	assert.Equal(t, "noext.aif", aiffPath("noext"))
}

func TestNormalizeBound(t *testing.T) {
	assert.Equal(t, 0, normalizeBound(-20, 10))
	assert.Equal(t, 7, normalizeBound(-3, 10))
	assert.Equal(t, 10, normalizeBound(waveio.End, 10))
	assert.Equal(t, 4, normalizeBound(4, 10))
}
