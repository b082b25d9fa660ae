package printing

// invoiceLayout is the built-in A4 invoice layout rendered by the HTML engines
const invoiceLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 12mm; }
  body { font-family: "Roboto", "Helvetica Neue", Arial, sans-serif; font-size: 10pt; color: #1f2937; }
  .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  .company { font-size: 16pt; font-weight: 700; margin-bottom: 6px; }
  .muted { color: #4b5563; line-height: 1.5; }
  .meta-title { font-size: 12pt; font-weight: 700; margin-bottom: 6px; text-align: right; }
  .meta td { padding: 1px 0 1px 12px; }
  .meta td.label { color: #6b7280; text-align: right; }
  .section-title { font-weight: 700; margin-bottom: 4px; }
  .client { font-size: 11pt; font-weight: 600; }
  table.items { width: 100%; border-collapse: collapse; margin: 20px 0; }
  table.items th { background: #f3f4f6; text-align: left; padding: 6px; border-bottom: 1px solid #d1d5db; }
  table.items td { padding: 6px; border-bottom: 1px solid #e5e7eb; }
  table.items tr:nth-child(even) td { background: #fafafa; }
  .num { text-align: right; white-space: nowrap; }
  .info { display: flex; justify-content: space-between; gap: 16px; page-break-inside: avoid; }
  .summary { min-width: 45%; }
  .summary .row { display: flex; justify-content: space-between; padding: 2px 0; }
  .summary .grand { border-top: 1px solid #9ca3af; margin-top: 6px; padding-top: 6px; font-weight: 700; font-size: 12pt; }
  .remark { margin-top: 16px; color: #4b5563; }
  .footer { margin-top: 32px; text-align: center; font-style: italic; color: #6b7280; }
</style>
</head>
<body>
<div class="header">
  <div>
    <div class="company">{{.Title}}</div>
    <div class="muted">
      {{range .Issuer.Address}}<div>{{.}}</div>{{end}}
      {{if notEmpty .Issuer.Phone}}<div>Phone: {{.Issuer.Phone}}</div>{{end}}
      {{if notEmpty .Issuer.Email}}<div>Email: {{.Issuer.Email}}</div>{{end}}
      {{if notEmpty .Issuer.Website}}<div>Website: {{.Issuer.Website}}</div>{{end}}
      {{if notEmpty .Issuer.GSTIN}}<div>GSTIN: {{.Issuer.GSTIN}}</div>{{end}}
    </div>
  </div>
  <div>
    <div class="meta-title">Invoice Details</div>
    <table class="meta">
      <tr><td class="label">Invoice #:</td><td>{{.Meta.Number}}</td></tr>
      <tr><td class="label">Date:</td><td>{{.Meta.Date}}</td></tr>
      <tr><td class="label">Due Date:</td><td>{{.Meta.DueDate}}</td></tr>
      <tr><td class="label">Type:</td><td>{{.Meta.PaymentType}}</td></tr>
    </table>
  </div>
</div>

<div>
  <div class="section-title">Bill To:</div>
  <div class="client">{{.BillTo.Name}}</div>
  <div class="muted">{{range lines .BillTo.Address}}<div>{{.}}</div>{{end}}</div>
  {{if notEmpty .BillTo.GSTIN}}<div class="muted">GSTIN: {{.BillTo.GSTIN}}</div>{{end}}
</div>

<table class="items">
  <thead>
    <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
    {{range .Lines}}
    <tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Amount}}</td></tr>
    {{end}}
  </tbody>
</table>

<div class="info">
  <div>
    {{if not .Payment.IsEmpty}}
    <div class="section-title">Payment Information:</div>
    <div class="muted">
      <div>Account Name: {{.Payment.AccountName}}</div>
      <div>A/C No: {{.Payment.AccountNumber}}</div>
      <div>IFSC: {{.Payment.IFSC}}</div>
    </div>
    {{end}}
  </div>
  <div class="summary">
    {{range .Summary}}
    <div class="row{{if .Grand}} grand{{end}}"><span>{{.Label}}:</span><span>{{.Amount}}</span></div>
    {{end}}
  </div>
</div>

{{if notEmpty .Remark}}<div class="remark">Remark: {{.Remark}}</div>{{end}}
{{if notEmpty .Footer}}<div class="footer">{{.Footer}}</div>{{end}}
</body>
</html>
`
