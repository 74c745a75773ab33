package tabinspect

import (
	"path/filepath"
	"strings"
)

// FileType represents a supported input format, independent of compression
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extLTSV is the LTSV file extension
	extLTSV = ".ltsv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
)

// String returns the format name
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeTSV:
		return "TSV"
	case FileTypeLTSV:
		return "LTSV"
	case FileTypeParquet:
		return "Parquet"
	case FileTypeXLSX:
		return "XLSX"
	default:
		return "unsupported"
	}
}

// file is an input source path together with its detected format
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile creates a new file, detecting format and compression from the path
func newFile(path string) *file {
	fileType, compression := detectFileType(path)
	return &file{
		path:        path,
		fileType:    fileType,
		compression: compression,
	}
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) (FileType, CompressionType) {
	compression := detectCompressionType(path)
	basePath := removeCompressionExtension(path)

	switch strings.ToLower(filepath.Ext(basePath)) {
	case extCSV:
		return FileTypeCSV, compression
	case extTSV:
		return FileTypeTSV, compression
	case extLTSV:
		return FileTypeLTSV, compression
	case extParquet:
		return FileTypeParquet, compression
	case extXLSX:
		return FileTypeXLSX, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// isSupportedFile checks if the file has a supported extension
func isSupportedFile(fileName string) bool {
	fileType, _ := detectFileType(fileName)
	return fileType != FileTypeUnsupported
}

// datasetNameFromPath creates a dataset name from a file path
func datasetNameFromPath(filePath string) string {
	fileName := filepath.Base(removeCompressionExtension(filePath))
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
