package slack

import (
	"net/http"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/controls"
)

// Handler adapts Slack slash-command form posts onto the command
// dispatcher. Request signature verification happens upstream; the caller
// identity is trusted as presented.
type Handler struct {
	dispatcher *controls.Dispatcher
}

// NewHandler creates a Slack command handler.
func NewHandler(dispatcher *controls.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// caller extracts the Slack caller identity from the form post.
func caller(c *gin.Context) controls.Caller {
	return controls.Caller{
		ID:   c.PostForm("user_id"),
		Name: c.PostForm("user_name"),
	}
}

// reply sends the rendered outcome as an ephemeral slash-command response.
func reply(c *gin.Context, out *controls.Outcome) {
	text := Render(out)
	logx.Debug("Command %s -> %s", out.Command, out.Kind)
	c.JSON(http.StatusOK, gin.H{
		"response_type": "ephemeral",
		"text":          text,
	})
}

// Power handles the power-control slash command.
func (h *Handler) Power(c *gin.Context) {
	reply(c, h.dispatcher.Power(c.Request.Context(), caller(c), c.PostForm("text")))
}

// Schedule handles the schedule slash command.
func (h *Handler) Schedule(c *gin.Context) {
	reply(c, h.dispatcher.Schedule(c.Request.Context(), caller(c), c.PostForm("text")))
}

// DisableSchedule handles the disable-schedule slash command.
func (h *Handler) DisableSchedule(c *gin.Context) {
	reply(c, h.dispatcher.DisableSchedule(c.Request.Context(), caller(c), c.PostForm("text")))
}

// Stakeholder handles the stakeholder slash command.
func (h *Handler) Stakeholder(c *gin.Context) {
	reply(c, h.dispatcher.Stakeholder(c.Request.Context(), caller(c), c.PostForm("text")))
}

// List handles the instance-listing slash command.
func (h *Handler) List(c *gin.Context) {
	reply(c, h.dispatcher.List(c.Request.Context(), caller(c)))
}

// Search handles the fuzzy-search slash command.
func (h *Handler) Search(c *gin.Context) {
	reply(c, h.dispatcher.Search(c.Request.Context(), caller(c), c.PostForm("text")))
}

// Help handles the help slash command.
func (h *Handler) Help(c *gin.Context) {
	reply(c, h.dispatcher.Help())
}
