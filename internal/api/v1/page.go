package v1

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonaycp/my-timesheet/internal/importer"
	"github.com/jonaycp/my-timesheet/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

func parsePageTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// pageData 页面渲染数据
type pageData struct {
	Session   Session
	Form      processForm
	Modes     []view.MonthMode
	Focuses   []view.Focus
	Result    *importer.Result
	ExportURL string
	LastLink  string
	Error     string
	Status    int
}

func (h *Handler) newPageData(c *gin.Context, form processForm) pageData {
	if form.Query == "" {
		form.Query = h.defaults.Query
	}
	if form.Mode == "" {
		form.Mode = string(h.defaults.Month)
	}
	if form.Order == "" {
		form.Order = string(h.defaults.Order)
	}
	d := pageData{
		Session: SessionFrom(c),
		Form:    form,
		Modes:   []view.MonthMode{view.MonthLatest, view.MonthSelected, view.MonthAll},
		Focuses: []view.Focus{view.FocusMonth, view.FocusThisWeek, view.FocusNextWeek},
		Status:  http.StatusOK,
	}
	if d.Session.Authenticated && h.resolver != nil {
		d.LastLink, _ = h.resolver.LastLink()
	}
	return d
}

// Page 首页：未登录时显示口令表单，否则显示上传表单
// GET /
func (h *Handler) Page(c *gin.Context) {
	data := h.newPageData(c, processForm{})
	c.HTML(data.Status, pageTemplate, data)
}

// SubmitPage 处理表单并渲染每周卡片
// POST /
func (h *Handler) SubmitPage(c *gin.Context) {
	var form processForm
	_ = c.ShouldBind(&form)
	data := h.newPageData(c, form)

	if !data.Session.Authenticated {
		data.Status = http.StatusUnauthorized
		data.Error = "password required"
		c.HTML(data.Status, pageTemplate, data)
		return
	}

	result, err := h.process(c, form)
	if err != nil {
		data.Status = errorStatus(err)
		data.Error = err.Error()
		c.HTML(data.Status, pageTemplate, data)
		return
	}
	data.Result = result
	if !result.Empty() {
		if token, err := h.storeExport(result); err == nil {
			data.ExportURL = "/api/export/download/" + token
		}
	}
	if h.resolver != nil {
		data.LastLink, _ = h.resolver.LastLink()
	}
	c.HTML(data.Status, pageTemplate, data)
}

// PageLogin 表单登录后跳回首页
// POST /login
func (h *Handler) PageLogin(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBind(&req)
	if !h.startSession(c, req.Password) {
		data := h.newPageData(c, processForm{})
		data.Status = http.StatusUnauthorized
		data.Error = "wrong password"
		c.HTML(data.Status, pageTemplate, data)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
