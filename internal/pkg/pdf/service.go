// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/store-backend/internal/config"
	"github.com/your-org/store-backend/internal/domain/order"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config config.ReceiptConfig
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg config.ReceiptConfig) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      string
	OrderDate     string
	Order         *order.Order
	Lines         []ReceiptLine
	Total         string
	Company       config.ReceiptConfig
}

// ReceiptLine is one formatted order line
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// GenerateReceipt renders the order receipt to PDF. It needs the wkhtmltopdf binary on PATH.
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML renders the receipt markup without converting it
func (s *Service) RenderReceiptHTML(o *order.Order) (string, error) {
	data := ReceiptData{
		ReceiptNumber: "RCT-" + o.OrderID,
		IssuedAt:      s.now().UTC().Format("January 2, 2006"),
		OrderDate:     o.CreatedAt.UTC().Format("January 2, 2006 15:04 MST"),
		Order:         o,
		Total:         s.money(o.Total.StringFixed(2)),
		Company:       s.config,
	}
	for _, item := range o.Items {
		data.Lines = append(data.Lines, ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: s.money(item.UnitPrice.StringFixed(2)),
			Subtotal:  s.money(item.Subtotal().StringFixed(2)),
		})
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) money(amount string) string {
	return s.config.Currency + amount
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
        .title { font-size: 26px; font-weight: bold; color: #2563eb; }
        .section-title { font-size: 16px; font-weight: bold; margin: 16px 0 8px; color: #374151; }
        table.items { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
        table.items th, table.items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        table.items th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 40px; border-top: 1px solid #eee; padding-top: 16px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.CompanyName}}</h1>
        {{if .Company.CompanyAddress}}<p>{{.Company.CompanyAddress}}</p>{{end}}
        {{if .Company.CompanyPhone}}<p>Phone: {{.Company.CompanyPhone}}</p>{{end}}
        {{if .Company.CompanyEmail}}<p>Email: {{.Company.CompanyEmail}}</p>{{end}}
        <div class="title">RECEIPT</div>
        <p><strong>Receipt #:</strong> {{.ReceiptNumber}}</p>
        <p><strong>Issued:</strong> {{.IssuedAt}}</p>
        <p><strong>Order Date:</strong> {{.OrderDate}}</p>
        <p><strong>Status:</strong> {{.Order.Status}}</p>
    </div>

    <div class="section-title">Customer</div>
    <p><strong>{{.Order.CustomerName}}</strong></p>
    <p>{{.Order.CustomerAddress}}</p>
    <p>Phone: {{.Order.CustomerPhone}}</p>

    <table class="items">
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Subtotal</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Subtotal}}</td></tr>
            {{end}}
            <tr class="total-row"><td colspan="3" class="num">Total</td><td class="num">{{.Total}}</td></tr>
        </tbody>
    </table>

    {{if .Order.Notes}}<div class="section-title">Notes</div><p>{{.Order.Notes}}</p>{{end}}

    <div class="footer">
        <p>Thank you for your order!</p>
        {{if .Company.CompanyWebsite}}<p>{{.Company.CompanyWebsite}}</p>{{end}}
    </div>
</body>
</html>
`
