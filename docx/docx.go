// Package docx writes minimal Office Open XML word-processing documents.
// Parts are built with etree and packaged with archive/zip.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/ameblodoc"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Namespaces used by the generated parts.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsPkg = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles   = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctRels     = "application/vnd.openxmlformats-package.relationships+xml"
)

// Image geometry in EMUs. Pictures are sized at 72 dpi
// and scaled down to fit the text width of a Letter page with 1" margins.
const (
	emuPerPixel = 12700
	maxWidthEMU = 6 * 914400
)

// MaxHeadingLevel is the deepest heading style available.
const MaxHeadingLevel = 9

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// Ensure Document implements ameblodoc.Document at compile time.
var _ ameblodoc.Document = (*Document)(nil)

// Document is an in-memory word-processing document.
// Document is not safe for concurrent use.
type Document struct {
	blocks   []*etree.Element
	media    []*media
	byHash   map[uint64]*media
	drawings int
}

type media struct {
	relID string
	name  string
	ext   string
	data  []byte
}

// New returns an empty document.
func New() *Document {
	return &Document{byHash: make(map[uint64]*media)}
}

// AddHeading appends a heading paragraph. Level 0 uses the Title style;
// levels are clamped to [0, MaxHeadingLevel].
func (d *Document) AddHeading(text string, level int) {
	level = max(0, min(level, MaxHeadingLevel))
	style := "Title"
	if level > 0 {
		style = fmt.Sprintf("Heading%d", level)
	}
	d.blocks = append(d.blocks, paragraph(style, text))
}

// AddParagraph appends a Normal paragraph. Newlines become line breaks.
func (d *Document) AddParagraph(text string) {
	d.blocks = append(d.blocks, paragraph("", text))
}

// AddPicture embeds an image in its own paragraph. PNG, JPEG, GIF, BMP and
// TIFF are stored as is; WebP is converted to PNG. Identical images are
// stored once and referenced again.
func (d *Document) AddPicture(data []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("image has no area: %dx%d", cfg.Width, cfg.Height)
	}

	if format == "webp" {
		data, err = webpToPNG(data)
		if err != nil {
			return err
		}
		format = "png"
	}
	if _, ok := contentTypes[format]; !ok {
		return fmt.Errorf("unsupported image format %q", format)
	}

	m := d.addMedia(data, format)

	cx := int64(cfg.Width) * emuPerPixel
	cy := int64(cfg.Height) * emuPerPixel
	if cx > maxWidthEMU {
		cy = cy * maxWidthEMU / cx
		cx = maxWidthEMU
	}

	d.drawings++
	d.blocks = append(d.blocks, drawing(d.drawings, m, cx, cy))
	return nil
}

func (d *Document) addMedia(data []byte, ext string) *media {
	sum := xxhash.Sum64(data)
	if m, ok := d.byHash[sum]; ok {
		return m
	}
	m := &media{
		// rId1 is reserved for the styles part.
		relID: fmt.Sprintf("rId%d", len(d.media)+2),
		name:  fmt.Sprintf("image-%016x.%s", sum, ext),
		ext:   ext,
		data:  data,
	}
	d.byHash[sum] = m
	d.media = append(d.media, m)
	return m
}

// Write writes the document as a .docx package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", packageRels()},
		{"word/document.xml", d.document()},
		{"word/styles.xml", styles()},
		{"word/_rels/document.xml.rels", d.documentRels()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := p.doc.WriteTo(f); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}

	for _, m := range d.media {
		f, err := zw.Create("word/media/" + m.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(m.data); err != nil {
			return fmt.Errorf("writing %s: %w", m.name, err)
		}
	}

	return zw.Close()
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (d *Document) document() *etree.Document {
	doc := newPart()
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	body := root.CreateElement("w:body")
	for _, b := range d.blocks {
		body.AddChild(b.Copy())
	}

	sect := body.CreateElement("w:sectPr")
	pgSz := sect.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", "12240")
	pgSz.CreateAttr("w:h", "15840")
	pgMar := sect.CreateElement("w:pgMar")
	for _, side := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		pgMar.CreateAttr(side, "1440")
	}
	pgMar.CreateAttr("w:header", "720")
	pgMar.CreateAttr("w:footer", "720")
	pgMar.CreateAttr("w:gutter", "0")
	return doc
}

func (d *Document) documentRels() *etree.Document {
	doc := newPart()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPkg)
	relationship(root, "rId1", relStyles, "styles.xml")
	for _, m := range d.media {
		relationship(root, m.relID, relImage, "media/"+m.name)
	}
	return doc
}

func (d *Document) contentTypes() *etree.Document {
	doc := newPart()
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", nsCT)

	defaults := map[string]string{
		"rels": ctRels,
		"xml":  "application/xml",
	}
	for _, m := range d.media {
		defaults[m.ext] = contentTypes[m.ext]
	}
	for _, ext := range []string{"rels", "xml", "png", "jpeg", "gif", "bmp", "tiff"} {
		ct, ok := defaults[ext]
		if !ok {
			continue
		}
		def := root.CreateElement("Default")
		def.CreateAttr("Extension", ext)
		def.CreateAttr("ContentType", ct)
	}

	override(root, "/word/document.xml", ctDocument)
	override(root, "/word/styles.xml", ctStyles)
	return doc
}

func packageRels() *etree.Document {
	doc := newPart()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPkg)
	relationship(root, "rId1", relOfficeDocument, "word/document.xml")
	return doc
}

func styles() *etree.Document {
	doc := newPart()
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", nsW)

	normal := style(root, "Normal", "Normal")
	normal.CreateAttr("w:default", "1")

	title := style(root, "Title", "Title")
	title.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
	title.CreateElement("w:next").CreateAttr("w:val", "Normal")
	title.CreateElement("w:qFormat")
	runProps(title, 56, true)

	for level := 1; level <= MaxHeadingLevel; level++ {
		h := style(root, fmt.Sprintf("Heading%d", level), fmt.Sprintf("heading %d", level))
		h.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
		h.CreateElement("w:next").CreateAttr("w:val", "Normal")
		h.CreateElement("w:qFormat")
		pPr := h.CreateElement("w:pPr")
		pPr.CreateElement("w:keepNext")
		pPr.CreateElement("w:outlineLvl").CreateAttr("w:val", fmt.Sprint(level-1))
		runProps(h, max(22, 34-2*level), true)
	}
	return doc
}

func style(root *etree.Element, id, name string) *etree.Element {
	s := root.CreateElement("w:style")
	s.CreateAttr("w:type", "paragraph")
	s.CreateAttr("w:styleId", id)
	s.CreateElement("w:name").CreateAttr("w:val", name)
	return s
}

// runProps sets the font size in half-points.
func runProps(s *etree.Element, halfPoints int, bold bool) {
	rPr := s.CreateElement("w:rPr")
	if bold {
		rPr.CreateElement("w:b")
	}
	rPr.CreateElement("w:sz").CreateAttr("w:val", fmt.Sprint(halfPoints))
}

func relationship(root *etree.Element, id, typ, target string) {
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", typ)
	rel.CreateAttr("Target", target)
}

func override(root *etree.Element, part, ct string) {
	o := root.CreateElement("Override")
	o.CreateAttr("PartName", part)
	o.CreateAttr("ContentType", ct)
}

func newPart() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

func paragraph(style, text string) *etree.Element {
	p := etree.NewElement("w:p")
	if style != "" {
		p.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", style)
	}
	r := p.CreateElement("w:r")
	text = strings.ReplaceAll(sanitize(text), "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.CreateElement("w:br")
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(line)
	}
	return p
}

func drawing(id int, m *media, cx, cy int64) *etree.Element {
	p := etree.NewElement("w:p")
	inline := p.CreateElement("w:r").CreateElement("w:drawing").CreateElement("wp:inline")
	for _, dist := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(dist, "0")
	}
	extent(inline.CreateElement("wp:extent"), cx, cy)

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", fmt.Sprint(id))
	docPr.CreateAttr("name", fmt.Sprintf("Picture %d", id))

	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").
		CreateAttr("noChangeAspect", "1")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", nsPic)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", m.name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", m.relID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	extent(xfrm.CreateElement("a:ext"), cx, cy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return p
}

func extent(e *etree.Element, cx, cy int64) {
	e.CreateAttr("cx", fmt.Sprint(cx))
	e.CreateAttr("cy", fmt.Sprint(cy))
}

func webpToPNG(data []byte) ([]byte, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding webp: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitize drops runes that are not allowed in XML 1.0 documents.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF, r >= 0xD800 && r <= 0xDFFF:
			return -1
		}
		return r
	}, s)
}
