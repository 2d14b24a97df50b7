package bot

import (
	"context"

	"github.com/iliyamo/tg-marketplace/internal/session"
)

// State is a conversation state tag as stored in the session store.
type State string

const (
	Idle                   State = "idle"
	Login                  State = "login"
	Register               State = "register"
	Search                 State = "search"
	Subscribe              State = "subscribe"
	Unsubscribe            State = "unsubscribe"
	CreateProduct          State = "create_product"
	GetProductDetail       State = "get_product_detail"
	UpdateProductAskID     State = "update_product_ask_id"
	UpdateProductAskFields State = "update_product_ask_fields"
	DeleteProduct          State = "delete_product"
	PurchaseProduct        State = "purchase_product"

	// anyState keys menu commands, which match whatever the current state.
	anyState State = "*"
)

// States lists every state a chat identity can be in.
var States = []State{
	Idle, Login, Register, Search, Subscribe, Unsubscribe, CreateProduct,
	GetProductDetail, UpdateProductAskID, UpdateProductAskFields,
	DeleteProduct, PurchaseProduct,
}

func knownState(s State) bool {
	for _, k := range States {
		if k == s {
			return true
		}
	}
	return false
}

// stateOf maps a stored state to its tag; a missing key is idle.
func stateOf(st session.State) State {
	if st.Tag == "" {
		return Idle
	}
	return State(st.Tag)
}

// freeText is the input shape of anything that is not a menu command.
const freeText = "<text>"

type transitionKey struct {
	state State
	input string
}

type outcome int

const (
	done    outcome = iota // move to the rule's next state
	retry                  // hold the state and re-prompt
	abort                  // back to idle
	relogin                // to the login state with the login prompt
)

type result struct {
	outcome outcome
	reply   string
	// payload is stored with the next state on done.
	payload string
}

// turn is one message being handled.
type turn struct {
	chatID  int64
	text    string
	payload string
	binding session.Binding
}

type handlerFunc func(ctx context.Context, t *turn) result

// rule is one row of the transition table. A rule without a handler only
// answers with its prompt and moves to next.
type rule struct {
	from   State
	handle handlerFunc
	prompt string
	auth   bool
	next   State
}

func (b *Bot) transitions() map[transitionKey]rule {
	table := map[transitionKey]rule{}
	menu := func(label string, r rule) {
		r.from = anyState
		table[transitionKey{state: anyState, input: label}] = r
	}
	text := func(st State, r rule) {
		r.from = st
		table[transitionKey{state: st, input: freeText}] = r
	}

	// Flows: the command prompts, the next free text is read in the flow's state.
	menu(CmdLogin, rule{prompt: promptLogin, next: Login})
	menu(CmdRegister, rule{prompt: promptRegister, next: Register})
	menu(CmdSearch, rule{prompt: promptSearch, next: Search})
	menu(CmdSubscribe, rule{prompt: promptSubscribe, auth: true, next: Subscribe})
	menu(CmdUnsubscribe, rule{prompt: promptUnsubscribe, auth: true, next: Unsubscribe})
	menu(CmdCreateProduct, rule{prompt: promptCreateProduct, auth: true, next: CreateProduct})
	menu(CmdProductDetail, rule{prompt: promptProductDetail, next: GetProductDetail})
	menu(CmdUpdateProduct, rule{prompt: promptUpdateProduct, auth: true, next: UpdateProductAskID})
	menu(CmdDeleteProduct, rule{prompt: promptDeleteProduct, auth: true, next: DeleteProduct})
	menu(CmdPurchaseProduct, rule{prompt: promptPurchaseProduct, auth: true, next: PurchaseProduct})

	// Immediate commands.
	menu(CmdHealth, rule{handle: b.health, next: Idle})
	menu(CmdPopulate, rule{handle: b.populate, auth: true, next: Idle})
	menu(CmdProfile, rule{handle: b.profile, auth: true, next: Idle})
	menu(CmdReward, rule{handle: b.reward, auth: true, next: Idle})
	menu(CmdClearWallet, rule{handle: b.clearWallet, auth: true, next: Idle})
	menu(CmdListUsers, rule{handle: b.listUsers, auth: true, next: Idle})
	menu(CmdListProducts, rule{handle: b.listProducts, next: Idle})

	text(Login, rule{handle: b.login, next: Idle})
	text(Register, rule{handle: b.register, next: Idle})
	text(Search, rule{handle: b.search, next: Idle})
	text(Subscribe, rule{handle: b.subscribe, auth: true, next: Idle})
	text(Unsubscribe, rule{handle: b.unsubscribe, auth: true, next: Idle})
	text(CreateProduct, rule{handle: b.createProduct, auth: true, next: Idle})
	text(GetProductDetail, rule{handle: b.productDetail, next: Idle})
	text(UpdateProductAskID, rule{handle: b.updateAskID, auth: true, next: UpdateProductAskFields})
	text(UpdateProductAskFields, rule{handle: b.updateAskFields, auth: true, next: Idle})
	text(DeleteProduct, rule{handle: b.deleteProduct, auth: true, next: Idle})
	text(PurchaseProduct, rule{handle: b.purchase, auth: true, next: Idle})

	return table
}
