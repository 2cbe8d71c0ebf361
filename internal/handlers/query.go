package handlers

import "github.com/gin-gonic/gin"

// listParams splits the request query into column filters and the
// order spec. Every parameter except "order" is treated as an
// exact-match filter; services whitelist the columns they accept.
func listParams(c *gin.Context) (map[string]string, string) {
	filters := make(map[string]string)
	order := ""
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "order" {
			order = values[0]
			continue
		}
		filters[key] = values[0]
	}
	return filters, order
}
