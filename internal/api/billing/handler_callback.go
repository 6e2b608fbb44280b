package billing

import (
	"fmt"
	"html/template"
	"net/http"

	"streamdraw/internal/participation"

	"github.com/gin-gonic/gin"
)

const OutcomeTemplateName = "payment_outcome.html"

var outcomePage = `<html>
  <head>
    <meta http-equiv="refresh" content="20;url=/" />
    <style>
      body { font-family: sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; background-color: #f8f8f8; text-align: center; }
      .card { background: white; padding: 2rem; border-radius: 12px; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
    </style>
  </head>
  <body>
    <div class="card">
      <h1>{{ .Message }}</h1>
      <p>You will be redirected to the stream in 20 seconds...</p>
      <p>If not, <a href="/">click here</a>.</p>
    </div>
  </body>
</html>`

// OutcomeTemplate must be installed with gin's SetHTMLTemplate for GiveAccess.
func OutcomeTemplate() *template.Template {
	return template.Must(template.New(OutcomeTemplateName).Parse(outcomePage))
}

// GiveAccess is the return/callback URL of form-post gateways. It must always
// answer: PayU does not retry, and the user is looking at this page.
func (h *Handler) GiveAccess(c *gin.Context) {
	txnid := c.PostForm("txnid")
	if txnid == "" {
		txnid = c.Query("txnid")
	}
	if txnid == "" {
		h.renderOutcome(c, "Transaction ID not found")
		return
	}

	res := h.Engine.ResolveCallback(c.Request.Context(), participation.Callback{TxnRef: txnid})

	if res.Outcome == participation.OutcomeSuccess {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.renderOutcome(c, h.outcomeMessage(res.Outcome))
}

func (h *Handler) outcomeMessage(o participation.Outcome) string {
	switch o {
	case participation.OutcomeAlreadyProcessed:
		return "Payment already processed"
	case participation.OutcomeStreamClosed:
		return fmt.Sprintf("Stream is no longer running, so you could not join. For a refund email us: %s", h.SupportEmail)
	case participation.OutcomeRecordMissing:
		return "No local payment record found"
	default:
		return "Payment verification failed"
	}
}

func (h *Handler) renderOutcome(c *gin.Context, message string) {
	c.HTML(http.StatusOK, OutcomeTemplateName, gin.H{"Message": message})
}
