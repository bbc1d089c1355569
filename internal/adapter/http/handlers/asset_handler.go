package handlers

import (
	"net/http"
	"strings"
	"time"

	"clearing_proposals/internal/infrastructure/storage"
	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
)

type objectReader interface {
	Get(key string) (storage.Object, bool)
}

// AssetHandler serves objects from the in-process store, honoring the expiry
// embedded in the signed URL.
type AssetHandler struct {
	store objectReader
	now   func() time.Time
}

func NewAssetHandler(store objectReader) *AssetHandler {
	return &AssetHandler{store: store, now: time.Now}
}

func (h *AssetHandler) Get(c *gin.Context) {
	expires, err := time.Parse(time.RFC3339, c.Query("expires"))
	if err != nil || h.now().After(expires) {
		writeError(c, pkg.NewDomainErrorSimple("LINK_EXPIRED", "Link expired", http.StatusForbidden))
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	obj, ok := h.store.Get(key)
	if !ok {
		writeError(c, pkg.NewDomainErrorSimple("ASSET_NOT_FOUND", "Asset not found", http.StatusNotFound))
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
