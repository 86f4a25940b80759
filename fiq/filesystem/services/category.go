package services

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/utils"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"
)

var typeCategories = map[string][]string{
	"Images":      {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "ico", "tiff", "tif"},
	"Videos":      {"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm"},
	"Audio":       {"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a"},
	"Documents":   {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "odp", "txt", "rtf", "csv", "md"},
	"Archives":    {"zip", "tar", "gz", "bz2", "xz", "7z", "rar", "zst"},
	"Executables": {"exe", "msi", "dmg", "app", "deb", "rpm", "appimage", "bin"},
	"Fonts":       {"ttf", "otf", "woff", "woff2", "eot"},
	"DiskImages":  {"iso", "img", "vmdk", "vdi", "qcow2"},
	"Code": {
		"rs", "py", "js", "ts", "go", "c", "cpp", "h", "hpp", "java", "rb", "php",
		"swift", "kt", "cs", "sh", "bash", "zsh", "fish", "ps1", "toml", "yaml",
		"yml", "json", "xml", "html", "css", "scss", "less", "sql", "r", "lua",
		"vim", "el", "ex", "exs", "hs", "ml", "clj",
	},
}

// extensionCategory is typeCategories inverted.
var extensionCategory = func() map[string]string {
	m := make(map[string]string)
	for category, exts := range typeCategories {
		for _, ext := range exts {
			m[ext] = category
		}
	}
	return m
}()

// CategoryOther holds every extension not listed elsewhere.
const CategoryOther = "Other"

// CategorizeByType maps a lowercase extension to its folder name.
func CategorizeByType(ext string) string {
	if c, ok := extensionCategory[ext]; ok {
		return c
	}
	return CategoryOther
}

// CategorizeByDate returns the "YYYY/MM" folder for t in local time.
func CategorizeByDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Local().Format("2006/01")
}

// CategorizeBySize returns the size bucket folder name. Bounds are decimal.
func CategorizeBySize(size int64) string {
	switch {
	case size == 0:
		return "Empty"
	case size < common.KB:
		return "Tiny (< 1KB)"
	case size < common.MB:
		return "Small (1KB-1MB)"
	case size < 100*common.MB:
		return "Medium (1MB-100MB)"
	case size < common.GB:
		return "Large (100MB-1GB)"
	default:
		return "Huge (> 1GB)"
	}
}

// Categorize picks the folder for a file under strategy. Date
// categorization prefers the EXIF capture time of JPEG and TIFF files.
func Categorize(strategy options.OrganizeStrategy, rec indexing.FileRecord) (string, error) {
	ext := common.Extension(rec.Name)
	switch strategy {
	case options.OrganizeByType:
		return CategorizeByType(ext), nil
	case options.OrganizeByDate:
		if utils.HasEXIF(ext) {
			if taken, ok := utils.CaptureTime(rec.Path); ok {
				return CategorizeByDate(taken), nil
			}
		}
		return CategorizeByDate(rec.ModTime), nil
	case options.OrganizeBySize:
		return CategorizeBySize(rec.Size), nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnknownStrategy, strategy)
	}
}
