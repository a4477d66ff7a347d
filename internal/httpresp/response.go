package httpresp

import "github.com/gin-gonic/gin"

type ListResponse[T any] struct {
	Data     []T      `json:"data"`
	Total    int      `json:"total"`
	Warnings []string `json:"warnings,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

func List[T any](c *gin.Context, data []T) {
	c.JSON(200, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}

// ListDegraded sinaliza resultado parcial (uma das fontes falhou).
func ListDegraded[T any](c *gin.Context, data []T, warnings []string) {
	c.JSON(200, ListResponse[T]{
		Data:     data,
		Total:    len(data),
		Warnings: warnings,
	})
}
