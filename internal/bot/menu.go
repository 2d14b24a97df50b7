package bot

// Menu commands, as shown on the reply keyboard.
const (
	CmdLogin           = "🔐 Log in"
	CmdRegister        = "📝 Register"
	CmdHealth          = "💉 Health Check"
	CmdSearch          = "🔍 Search"
	CmdPopulate        = "🛠 Populate Products"
	CmdProfile         = "👤 Profile"
	CmdReward          = "💰 Reward"
	CmdClearWallet     = "🧹 Clear Wallet"
	CmdSubscribe       = "➕ Subscribe"
	CmdUnsubscribe     = "➖ Unsubscribe"
	CmdListUsers       = "👥 List Users"
	CmdListProducts    = "📃 List Products"
	CmdProductDetail   = "🔍 Product Detail"
	CmdPurchaseProduct = "💸 Purchase Product"
	CmdCreateProduct   = "➕ Create Product"
	CmdUpdateProduct   = "✏️ Update Product"
	CmdDeleteProduct   = "🗑 Delete Product"
)

var menuRows = [][]string{
	{CmdLogin, CmdRegister, CmdHealth},
	{CmdSearch, CmdPopulate},
	{CmdProfile, CmdReward, CmdClearWallet},
	{CmdSubscribe, CmdUnsubscribe, CmdListUsers},
	{CmdListProducts, CmdProductDetail, CmdPurchaseProduct},
	{CmdCreateProduct, CmdUpdateProduct, CmdDeleteProduct},
}

const welcomeText = "👋 Welcome! Use the buttons below.\n\n" +
	"🔐 Log in: log in with your nickname or email\n" +
	"📝 Register: create an account\n" +
	"🔍 Search: search assistant, write your query to it\n" +
	"💉 Health Check: check backend DB health\n" +
	"🛠 Populate Products: create 50 random products\n" +
	"👤 Profile: get your profile with products and wallet\n" +
	"💰 Reward: add coins to your wallet\n" +
	"🧹 Clear Wallet: reset your wallet balance to zero\n" +
	"➕ Create Product: create new product\n" +
	"📃 List Products: return list of all products\n" +
	"🔍 Product Detail: get detailed information about a specific product\n" +
	"✏️ Update Product: update your specific product\n" +
	"🗑 Delete Product: delete your specific product\n" +
	"💸 Purchase Product: buy a product\n" +
	"➕ Subscribe: subscribe to a seller (you will be prompted for seller ID)\n" +
	"➖ Unsubscribe: unsubscribe from a seller (you will be prompted for seller ID)\n" +
	"👥 List Users: get list of all users\n"

const (
	promptLogin    = "🔐 Please enter your nickname or email and password separated by comma:"
	promptRegister = "📝 Please enter nickname, email, password and confirm_password separated by comma:\n" +
		"`nickname,email,password,confirm_password`"
	promptSearch          = "🤖 Hello! I am your search assistant based on artificial intelligence. Enter your search query:"
	promptSubscribe       = "➕ Please enter the seller ID to subscribe:"
	promptUnsubscribe     = "➖ Please enter the seller ID to unsubscribe:"
	promptCreateProduct   = "➕ Creating product.\nPlease enter product details in format:\nname, price, description\n(Use comma `,` as separator)"
	promptProductDetail   = "🔍 Please enter product ID to get details:"
	promptUpdateProduct   = "✏️ Update product.\nPlease enter product ID to update:"
	promptUpdateFields    = "✏️ Enter fields to update in format:\nname, price, description\nLeave field empty to skip (e.g. , 100.0, new description)"
	promptDeleteProduct   = "🗑 Please enter product ID to delete:"
	promptPurchaseProduct = "💸 Please enter product ID to purchase:"
)

const (
	msgFallback        = "❓ Please use buttons or commands from the menu."
	msgLoginFirst      = "❌ Please log in first."
	msgBusy            = "⏳ Still working on your previous message, try again in a moment."
	msgSessionExpired  = "🔐 Your session has expired. Please log in again.\n" + promptLogin
	msgUnavailable     = "⚠️ The marketplace is unavailable right now. Try again:"
	msgMissingPayload  = "❌ Internal error: product ID not found in context."
	msgLoginFormat     = "❌ Invalid format. Use: nickname_or_email,password"
	msgRegisterFormat  = "❌ Invalid format. Use: nickname,email,password,confirm_password"
	msgPasswordsDiffer = "❌ Passwords do not match. Try again:"
	msgCreateFormat    = "❌ Invalid format. Use: name, price, description (description optional)"
	msgPriceNumber     = "❌ Price must be a number."
	msgProductIDNumber = "❌ Product ID must be an integer."
	msgSellerIDNumber  = "❌ Seller ID must be an integer. Try again:"
	msgNoUpdateFields  = "❌ No fields provided for update."
	msgNoResults       = "❌ No matching products found."
)
