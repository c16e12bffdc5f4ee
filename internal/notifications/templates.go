// Package notifications renders and delivers the customer-facing status
// emails. Copy is Spanish, matching the storefront.
package notifications

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	"github.com/regaloamor/storefront-backend/pkg/enums"
)

type statusCopy struct {
	Subject string
	Title   string
	Icon    string
	Color   string
	Message string
	Label   string
}

// statusEmails maps each notifiable status to its email copy. Statuses absent
// here (pendiente_pago, rechazado) never produce a customer email.
var statusEmails = map[enums.OrderStatus]statusCopy{
	enums.OrderStatusPaid: {
		Subject: "Pago Confirmado - Tu pedido está en camino",
		Title:   "¡Pago Confirmado!",
		Icon:    "✓",
		Color:   "#10b981",
		Message: "Hemos recibido tu pago exitosamente. Ahora comenzaremos a preparar tu pedido con todo el cariño.",
		Label:   "Pagado",
	},
	enums.OrderStatusInProgress: {
		Subject: "Tu pedido está siendo preparado",
		Title:   "En Preparación",
		Icon:    "🔨",
		Color:   "#3b82f6",
		Message: "Estamos trabajando en tu pedido. Nuestros artesanos están poniendo todo su amor y dedicación.",
		Label:   "Preparando",
	},
	enums.OrderStatusReady: {
		Subject: "Tu pedido está listo",
		Title:   "¡Pedido Listo!",
		Icon:    "✨",
		Color:   "#8b5cf6",
		Message: "¡Tu pedido está terminado y quedó hermoso! Pronto lo enviaremos a tu dirección.",
		Label:   "Listo",
	},
	enums.OrderStatusShipped: {
		Subject: "Tu pedido va en camino",
		Title:   "¡En Camino!",
		Icon:    "🚚",
		Color:   "#6366f1",
		Message: "¡Tu pedido está en camino! Pronto lo recibirás en tu dirección. Mantente atento.",
		Label:   "Enviado",
	},
	enums.OrderStatusDelivered: {
		Subject: "¡Pedido Entregado! Gracias por tu compra",
		Title:   "¡Entregado!",
		Icon:    "🎉",
		Color:   "#059669",
		Message: "¡Tu pedido ha sido entregado! Esperamos que lo disfrutes. Gracias por confiar en nosotros.",
		Label:   "Entregado",
	},
	enums.OrderStatusCancelled: {
		Subject: "Pedido Cancelado",
		Title:   "Pedido Cancelado",
		Icon:    "✗",
		Color:   "#ef4444",
		Message: "Lamentamos informarte que tu pedido ha sido cancelado. Si tienes dudas, contáctanos.",
		Label:   "Cancelado",
	},
}

// timelineOrder is the happy-path sequence shown in the progress strip.
var timelineOrder = []enums.OrderStatus{
	enums.OrderStatusPaid,
	enums.OrderStatusInProgress,
	enums.OrderStatusReady,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

type timelineStep struct {
	Label     string
	Color     string
	Completed bool
	Current   bool
}

type emailItem struct {
	Name     string
	Qty      int
	TotalCLP string
}

type emailData struct {
	Copy         statusCopy
	OrderRef     string
	ShowTimeline bool
	Timeline     []timelineStep
	Items        []emailItem
	TotalCLP     string
	CustomerName string
	Address      string
	Commune      string
	Phone        string
	Email        string
	Year         int
}

var emailTemplate = template.Must(template.New("status_email").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Copy.Subject}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f8f9fa;">
  <table role="presentation" cellspacing="0" cellpadding="0" width="100%" style="background-color: #f8f9fa;">
    <tr>
      <td style="padding: 40px 20px;">
        <table role="presentation" cellspacing="0" cellpadding="0" width="100%" style="max-width: 600px; margin: 0 auto;">
          <tr>
            <td style="background: linear-gradient(135deg, #1f2937, #111827); padding: 30px; border-radius: 16px 16px 0 0; text-align: center;">
              <h1 style="margin: 0; color: white; font-size: 28px; font-weight: 700;">🎁 Regalo Amor</h1>
              <p style="margin: 8px 0 0 0; color: rgba(255,255,255,0.8); font-size: 14px;">Regalos personalizados con amor</p>
            </td>
          </tr>
          <tr>
            <td style="background: white; padding: 30px; text-align: center; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <div style="display: inline-block; width: 80px; height: 80px; border-radius: 50%; background: {{.Copy.Color}}; color: white; font-size: 36px; line-height: 80px; margin-bottom: 16px;">{{.Copy.Icon}}</div>
              <h2 style="margin: 0 0 8px 0; font-size: 24px; color: #111827;">{{.Copy.Title}}</h2>
              <p style="margin: 0; color: #6b7280; font-size: 16px; line-height: 1.5;">{{.Copy.Message}}</p>
            </td>
          </tr>
{{- if .ShowTimeline}}
          <tr>
            <td style="background: #f8f9fa; padding: 24px; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <table role="presentation" cellspacing="0" cellpadding="0" width="100%">
                <tr>
{{- range .Timeline}}
                  <td style="text-align: center; padding: 0 5px;">
                    <div style="width: 36px; height: 36px; border-radius: 50%; background: {{if .Completed}}{{.Color}}{{else}}#e5e7eb{{end}}; color: white; display: inline-block; line-height: 36px; font-size: 14px; margin-bottom: 4px;{{if .Current}} box-shadow: 0 0 0 4px rgba(0,0,0,0.1);{{end}}">{{if .Completed}}✓{{end}}</div>
                    <div style="font-size: 10px; color: {{if .Completed}}#111827{{else}}#9ca3af{{end}};">{{.Label}}</div>
                  </td>
{{- end}}
                </tr>
              </table>
            </td>
          </tr>
{{- end}}
          <tr>
            <td style="background: white; padding: 24px; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <span style="font-size: 12px; color: #6b7280; text-transform: uppercase; letter-spacing: 1px;">Número de Pedido</span>
              <div style="font-size: 20px; font-weight: 700; color: #111827; font-family: monospace;">#{{.OrderRef}}</div>
            </td>
          </tr>
          <tr>
            <td style="background: white; padding: 0 24px 24px 24px; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <h3 style="margin: 0 0 16px 0; font-size: 16px; color: #111827;">📦 Tu Pedido</h3>
              <table role="presentation" cellspacing="0" cellpadding="0" width="100%" style="background: #f8f9fa; border-radius: 8px;">
{{- range .Items}}
                <tr>
                  <td style="padding: 12px 16px; border-bottom: 1px solid #e5e7eb;">
                    <span style="font-weight: 500; color: #111827;">{{.Name}}</span>
                    <span style="color: #6b7280; margin-left: 8px;">x{{.Qty}}</span>
                  </td>
                  <td style="padding: 12px 16px; text-align: right; border-bottom: 1px solid #e5e7eb;">
                    <span style="font-weight: 600; color: #111827;">${{.TotalCLP}}</span>
                  </td>
                </tr>
{{- end}}
                <tr>
                  <td style="padding: 16px; font-weight: 700; color: #111827;">Total</td>
                  <td style="padding: 16px; text-align: right; font-weight: 700; font-size: 18px; color: #111827;">${{.TotalCLP}}</td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="background: white; padding: 0 24px 24px 24px; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <h3 style="margin: 0 0 16px 0; font-size: 16px; color: #111827;">📍 Dirección de Entrega</h3>
              <div style="background: #f8f9fa; padding: 16px; border-radius: 8px;">
                <p style="margin: 0 0 8px 0; font-weight: 500; color: #111827;">{{.CustomerName}}</p>
                <p style="margin: 0 0 4px 0; color: #6b7280;">{{.Address}}</p>
{{- if .Commune}}
                <p style="margin: 0 0 4px 0; color: #6b7280;">{{.Commune}}</p>
{{- end}}
                <p style="margin: 0; color: #6b7280;">{{.Phone}}</p>
              </div>
            </td>
          </tr>
          <tr>
            <td style="background: white; padding: 0 24px 30px 24px; text-align: center; border-left: 1px solid #e5e7eb; border-right: 1px solid #e5e7eb;">
              <p style="margin: 0 0 16px 0; color: #6b7280; font-size: 14px;">¿Tienes alguna pregunta?</p>
              <a href="mailto:contacto@regaloamor.cl" style="display: inline-block; padding: 12px 24px; background: linear-gradient(135deg, #1f2937, #111827); color: white; text-decoration: none; border-radius: 8px; font-weight: 600; font-size: 14px;">Contáctanos</a>
            </td>
          </tr>
          <tr>
            <td style="background: #f8f9fa; padding: 24px; border-radius: 0 0 16px 16px; text-align: center; border: 1px solid #e5e7eb; border-top: none;">
              <p style="margin: 0 0 8px 0; color: #9ca3af; font-size: 12px;">© {{.Year}} Regalo Amor. Todos los derechos reservados.</p>
              <p style="margin: 0; color: #9ca3af; font-size: 12px;">Este email fue enviado a {{.Email}} porque realizaste una compra.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

// orderRef is the short human-readable order reference shown to customers.
func orderRef(order *models.Order) string {
	return strings.ToUpper(strings.ReplaceAll(order.ID.String(), "-", "")[:8])
}

// formatCLP renders an amount with Chilean thousands separators.
func formatCLP(amount int) string {
	digits := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// Subject returns the full subject line for a status email.
func Subject(status enums.OrderStatus, order *models.Order) string {
	copyData, ok := statusEmails[status]
	if !ok {
		return "Actualización de tu pedido"
	}
	return fmt.Sprintf("%s | Pedido #%s", copyData.Subject, orderRef(order))
}

// RenderStatusEmail produces the HTML body for the order's current status.
// It returns ok=false when the status has no customer-facing email.
func RenderStatusEmail(order *models.Order) (string, bool, error) {
	copyData, ok := statusEmails[order.Status]
	if !ok {
		return "", false, nil
	}

	data := emailData{
		Copy:     copyData,
		OrderRef: orderRef(order),
		TotalCLP: formatCLP(order.TotalCLP),
		Address:  order.Address,
		Commune:  order.Commune,
		Year:     time.Now().Year(),
	}
	if order.Customer != nil {
		data.CustomerName = order.Customer.Name
		data.Email = order.Customer.Email
		data.Phone = order.Customer.PhoneWhatsApp
	}
	if data.Address == "" {
		data.Address = "No especificada"
	}

	for _, item := range order.Items {
		data.Items = append(data.Items, emailItem{
			Name:     item.Name,
			Qty:      item.Qty,
			TotalCLP: formatCLP(item.TotalCLP),
		})
	}

	if order.Status != enums.OrderStatusCancelled {
		data.ShowTimeline = true
		currentIdx := -1
		for i, status := range timelineOrder {
			if status == order.Status {
				currentIdx = i
			}
		}
		for i, status := range timelineOrder {
			step := statusEmails[status]
			data.Timeline = append(data.Timeline, timelineStep{
				Label:     step.Label,
				Color:     step.Color,
				Completed: i <= currentIdx,
				Current:   i == currentIdx,
			})
		}
	}

	var buf strings.Builder
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}
