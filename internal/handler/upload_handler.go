package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// 超过该宽度的图片在保存前会被缩放，记忆卡片用不到原图
const maxUploadWidth = 1600

// UploadMemoryImage 处理记忆条目的图片上传
func (a *API) UploadMemoryImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	if err := a.saveImage(c, file, filePath, ext); err != nil {
		a.log.Error("upload: save image failed", zap.String("filename", file.Filename), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename),
	})
}

// saveImage 保存上传的图片，JPEG/PNG 超宽时先缩放再落盘
// 其他格式原样保存
func (a *API) saveImage(c *gin.Context, file *multipart.FileHeader, filePath, ext string) error {
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return c.SaveUploadedFile(file, filePath)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxUploadWidth {
		height := bounds.Dy() * maxUploadWidth / bounds.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	switch format {
	case "png":
		return png.Encode(out, img)
	default:
		return jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
	}
}
