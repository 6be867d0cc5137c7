package report

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

const regionImageName = "region"

// assemble places a w by h pixel PNG on portrait A4 pages at full page width.
// Content taller than one page continues on the next with the image
// shifted up by the height already shown.
func assemble(png []byte, w, h int) ([]byte, int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("familybudget", false)
	pdf.SetTitle("Family Budget Report", false)

	pageW, pageH := pdf.GetPageSize()
	imgW := pageW
	imgH := imgW * float64(h) / float64(w)

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(regionImageName, opt, bytes.NewReader(png))

	offsets := pageOffsets(imgH, pageH)
	for _, y := range offsets {
		pdf.AddPage()
		pdf.ImageOptions(regionImageName, 0, y, imgW, imgH, false, opt, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(offsets), nil
}

// pageOffsets returns the vertical image position for each page.
func pageOffsets(imgH, pageH float64) []float64 {
	offsets := []float64{0}
	left := imgH - pageH
	for left > 0 {
		offsets = append(offsets, left-imgH)
		left -= pageH
	}
	return offsets
}
