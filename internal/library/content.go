package library

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre"

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// ExtractEPUB returns the text of an EPUB file in reading order
func ExtractEPUB(file string) (string, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var sections []string
	for _, name := range spineOrder(files) {
		f, ok := files[name]
		if !ok {
			continue
		}
		text, err := extractSection(f)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		if text != "" {
			sections = append(sections, text)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

// spineOrder lists content documents from the package spine, falling back
// to every (x)html file sorted by name
func spineOrder(files map[string]*zip.File) []string {
	if order := readSpine(files); len(order) > 0 {
		return order
	}

	var names []string
	for name := range files {
		switch strings.ToLower(path.Ext(name)) {
		case ".xhtml", ".html", ".htm":
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func readSpine(files map[string]*zip.File) []string {
	var container epubContainer
	if err := decodeXML(files["META-INF/container.xml"], &container); err != nil || len(container.Rootfiles) == 0 {
		return nil
	}
	opfPath := container.Rootfiles[0].FullPath

	var pkg epubPackage
	if err := decodeXML(files[opfPath], &pkg); err != nil {
		return nil
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}

	dir := path.Dir(opfPath)
	var order []string
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		order = append(order, path.Clean(path.Join(dir, hrefPath(href))))
	}
	return order
}

// hrefPath turns a manifest href (a URL reference) into a zip entry path
func hrefPath(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if p, err := url.PathUnescape(href); err == nil {
		return p
	}
	return href
}

func decodeXML(f *zip.File, v any) error {
	if f == nil {
		return fmt.Errorf("missing file")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func extractSection(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return ExtractText(rc)
}

// ExtractText returns the readable text of an (X)HTML document, one block per paragraph
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	var blocks []string
	doc.Find("body").Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// nested blocks are covered by their outermost ancestor
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return collapseSpace(doc.Find("body").Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
