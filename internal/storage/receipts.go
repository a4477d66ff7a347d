package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"github.com/ConsultaVida01/consulta-scheduler/internal/config"
	"github.com/ConsultaVida01/consulta-scheduler/internal/httperr"
)

// ReceiptStore guarda comprovantes de depósito e devolve a referência
// opaca (receiptRef). O conteúdo nunca é inspecionado pelo domínio.
type ReceiptStore interface {
	Save(ctx context.Context, prefix string, data []byte, contentType string) (string, error)
}

const maxReceiptWidth = 1600

// --------------------------------------------------
// S3
// --------------------------------------------------

type S3ReceiptStore struct {
	client *s3.Client
	bucket string
}

func NewS3ReceiptStore(cfg *config.Config) *S3ReceiptStore {
	opts := s3.Options{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
		UsePathStyle: true,
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}

	return &S3ReceiptStore{
		client: s3.New(opts),
		bucket: cfg.S3Bucket,
	}
}

func (s *S3ReceiptStore) Save(
	ctx context.Context,
	prefix string,
	data []byte,
	contentType string,
) (string, error) {

	key := fmt.Sprintf("%s/%d", prefix, time.Now().UnixNano())

	// comprovantes chegam como foto de celular; normalizamos para webp
	if normalized, err := NormalizeImage(data); err == nil {
		data = normalized
		contentType = "image/webp"
		key += ".webp"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return key, nil
}

// NormalizeImage decodifica jpeg/png/webp, limita a largura e
// re-codifica como webp.
func NormalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		img, err = webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxReceiptWidth {
		h := bounds.Dy() * maxReceiptWidth / bounds.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, maxReceiptWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --------------------------------------------------
// Fallback quando o bucket não está configurado
// --------------------------------------------------

type DisabledReceiptStore struct{}

func (DisabledReceiptStore) Save(context.Context, string, []byte, string) (string, error) {
	return "", httperr.ErrBusiness("receipts_unconfigured")
}

// NewReceiptStore escolhe a implementação a partir da configuração.
func NewReceiptStore(cfg *config.Config) ReceiptStore {
	if cfg.S3Bucket == "" {
		return DisabledReceiptStore{}
	}
	return NewS3ReceiptStore(cfg)
}

var _ ReceiptStore = (*S3ReceiptStore)(nil)
