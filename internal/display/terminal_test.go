package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/statement-analyzer/uploader/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTerminal_StatusLines(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminal(&out, false)

	d.SetStatus(models.Warning(models.MessageNoFileSelected))
	d.SetStatus(models.Warning(models.MessageWrongFileType))

	assert.Equal(t, "[warning] Please select a PDF file.\n[warning] Only PDF files are allowed.\n", out.String())
}

func TestTerminal_ProgressBar(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminal(&out, false)

	d.SetStatus(models.Info(models.MessageUploading))
	d.ShowProgress()
	d.SetProgress(models.NewUploadProgress(10, 100))
	d.SetProgress(models.NewUploadProgress(55, 100))
	d.SetProgress(models.NewUploadProgress(100, 100))
	d.SetStatus(models.Success(models.MessageUploadComplete))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "[info] Uploading...\n"))
	assert.Contains(t, text, "55%")
	assert.Contains(t, text, "100%")
	assert.True(t, strings.HasSuffix(text, "[success] Upload Complete!\n"))
}

func TestTerminal_ProgressRoundsPercent(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminal(&out, false)

	d.ShowProgress()
	// 0.29 * 100 is 28.999999999999996 in floating point.
	d.SetProgress(models.NewUploadProgress(29, 100))

	assert.Contains(t, out.String(), "29%")
	assert.NotContains(t, out.String(), "28%")
	assert.NoError(t, d.Err())
}

func TestTerminal_ProgressWithoutBar(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminal(&out, false)

	d.SetProgress(models.NewUploadProgress(50, 100))
	assert.Empty(t, out.String())
}

func TestTerminal_Colors(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminal(&out, true)

	d.SetStatus(models.Error(models.MessageUploadFailed))
	d.SetStatus(models.Success(models.MessageUploadComplete))
	d.SetStatus(models.Info(models.MessageUploading))

	assert.Equal(t,
		colorRed+"Upload Failed!"+colorReset+"\n"+
			colorGreen+"Upload Complete!"+colorReset+"\n"+
			colorOrange+"Uploading..."+colorReset+"\n",
		out.String())
}
