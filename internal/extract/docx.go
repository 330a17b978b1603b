package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// readZipFile returns the contents of the named entry, or nil if it does not exist.
func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, nil
}

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipFile(zr, contentTypesPath)
	if err != nil || data == nil {
		return ""
	}
	content := string(data)
	if matches := partNameRe.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	if matches := partNameRe2.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	return ""
}

// extractDOCX returns the body paragraphs of a .docx joined by newlines, in document order.
// Only paragraphs that are direct children of <w:body> count: paragraphs inside tables,
// content controls and text boxes are skipped.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a zip: %w", err)
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", err
	}
	if docXML == nil {
		return "", fmt.Errorf("%s not found", docPath)
	}
	paragraphs, err := docxParagraphs(docXML)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks WordprocessingML and collects the text of each body <w:p>.
// A paragraph's text comes from its own runs and the runs of its hyperlinks; within
// such a run <w:t> contributes text, <w:tab/> a tab and <w:br/>, <w:cr/> a newline.
func docxParagraphs(docXML []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	var (
		paragraphs []string
		cur        strings.Builder
		stack      []string
		pIdx       = -1
		rIdx       = -1
		inText     bool
	)
	// parent returns the local name of the element enclosing the one at index i.
	parent := func(i int) string {
		if i < 1 {
			return ""
		}
		return stack[i-1]
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			idx := len(stack) - 1
			switch t.Name.Local {
			case "p":
				if pIdx < 0 && parent(idx) == "body" {
					pIdx = idx
					cur.Reset()
				}
			case "r":
				if pIdx >= 0 && rIdx < 0 &&
					(idx-1 == pIdx || (idx-2 == pIdx && parent(idx) == "hyperlink")) {
					rIdx = idx
				}
			case "t":
				inText = rIdx >= 0 && idx-1 == rIdx
			case "tab":
				if rIdx >= 0 && idx-1 == rIdx {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if rIdx >= 0 && idx-1 == rIdx {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			idx := len(stack) - 1
			stack = stack[:idx]
			switch {
			case t.Name.Local == "t":
				inText = false
			case idx == rIdx:
				rIdx = -1
			case idx == pIdx:
				paragraphs = append(paragraphs, cur.String())
				pIdx = -1
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paragraphs, nil
}
