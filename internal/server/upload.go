package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/medtravel/internal/upload"
)

// maxUploadBody caps the whole multipart request, comfortably above the
// largest per-type limit so that oversize files get the per-type message.
const maxUploadBody = 32 << 20

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	MIME     string `json:"mime"`
	Size     int64  `json:"size"`
	Filename string `json:"filename"`
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

	kind := c.PostForm("type")
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, http.StatusBadRequest, "file too large: uploads are limited to "+upload.FormatSize(maxRuleSize()))
			return
		}
		fail(c, http.StatusBadRequest, "no file uploaded")
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.failErr(c, err)
		return
	}
	defer f.Close()

	res, err := s.uploader.Upload(c.Request.Context(), kind, fh.Filename, fh.Size, f)
	if err != nil {
		s.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		URL:      res.URL,
		MIME:     res.MIME,
		Size:     res.Size,
		Filename: res.Filename,
	})
}

func maxRuleSize() int64 {
	var max int64
	for _, r := range upload.Rules {
		if r.MaxSize > max {
			max = r.MaxSize
		}
	}
	return max
}
