package flow

// Session states, grouped per workflow. The empty state is idle: no workflow
// has been started yet.
const (
	stateIdle = ""

	// order-create
	stateClientSearch  = "client_search"
	stateClientSelect  = "client_select"
	stateAddressSelect = "address_select"
	stateAddressEnter  = "address_enter"
	stateOrderProduct  = "order_product_select"
	stateOrderQuantity = "order_quantity_enter"
	stateOrderLineDone = "order_line_confirm"
	stateOrderConfirm  = "order_final_confirm"

	// receipt-create
	stateSupplierSelect  = "supplier_select"
	stateInvoiceDate     = "invoice_date_select"
	stateInvoiceNumber   = "invoice_number_enter"
	stateReceiptProduct  = "receipt_product_select"
	stateReceiptQuantity = "receipt_quantity_enter"
	stateReceiptCost     = "receipt_cost_enter"
	stateReceiptLineDone = "receipt_line_confirm"
	stateReceiptConfirm  = "receipt_final_confirm"

	// order-edit
	stateOrderPick      = "order_pick"
	stateOrderMenu      = "order_menu"
	stateEditLinePick   = "edit_line_pick"
	stateEditLineQty    = "edit_line_quantity_enter"
	stateDeleteLinePick = "delete_line_pick"
	stateAddProductPick = "add_product_pick"
	stateAddProductQty  = "add_product_quantity_enter"
	stateEditDatePick   = "edit_date_pick"
	stateDeleteConfirm  = "order_delete_confirm"
)

// Selection tokens. Tokens carrying an argument use a "prefix:value" shape.
const (
	tokenCancel  = "cancel"
	tokenConfirm = "confirm"
	tokenAddLine = "line:add"
	tokenFinish  = "line:finish"
	tokenNewAddr = "address:new"
	tokenMenu    = "menu"

	tokenPrefixStart    = "start:"
	tokenPrefixClient   = "client:"
	tokenPrefixAddress  = "address:"
	tokenPrefixSupplier = "supplier:"
	tokenPrefixProduct  = "product:"
	tokenPrefixDate     = "date:"
	tokenPrefixOrder    = "order:"
	tokenPrefixLine     = "orderline:"
	tokenPrefixAction   = "action:"
)

// Order-menu actions.
const (
	actionChangeQty  = "change_quantity"
	actionDeleteLine = "delete_line"
	actionAddLine    = "add_line"
	actionChangeDate = "change_date"
	actionDelete     = "delete_order"
)
