package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"portfolio/devserver/utils"
)

const defaultFile = "index.html"

// StaticHandlers serves the site's files from RootDir.
type StaticHandlers struct {
	RootDir     string
	DefaultFile string
}

func NewStaticHandlers(rootDir string) *StaticHandlers {
	return &StaticHandlers{RootDir: rootDir, DefaultFile: defaultFile}
}

// ServeFile maps the request path to a file under RootDir. "/" serves the
// default file. Anything that is not a readable regular file is a 404.
func (h *StaticHandlers) ServeFile(c *gin.Context) {
	requested := c.Request.URL.Path
	if requested == "/" || requested == "" {
		requested = "/" + h.DefaultFile
	}

	// Cleaning against "/" keeps ".." from climbing out of RootDir.
	filePath := filepath.Join(h.RootDir, filepath.FromSlash(path.Clean("/"+requested)))

	info, err := os.Stat(filePath)
	if err != nil || !info.Mode().IsRegular() {
		notFound(c)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		notFound(c)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, info.Size(), utils.MimeTypeFor(filePath), f, nil)
}

func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "Not Found")
}
