package ws

const (
	// client - server
	MsgCreateGame     = "create_game"
	MsgJoinGame       = "join_game"
	MsgGetLobby       = "get_lobby"
	MsgTap            = "tap"
	MsgTimeout        = "timeout"
	MsgRematchRequest = "rematch_request"
	MsgAcceptRematch  = "accept_rematch"
	MsgDeclineRematch = "decline_rematch"
	MsgExitGame       = "exit_game"

	// server - client
	MsgGameCreated          = "game_created"
	MsgUpdateLobby          = "update_lobby"
	MsgGameStarted          = "game_started"
	MsgTurn                 = "turn"
	MsgWin                  = "win"
	MsgLose                 = "lose"
	MsgOpponentDisconnected = "opponentDisconnected"
	MsgRematchOffer         = "rematch_offer"
	MsgRematchWaiting       = "rematch_waiting"
	MsgRematchDeclined      = "rematch_declined"
	MsgExitConfirmed        = "exit_confirmed"
	MsgError                = "error"
)

const (
	StateWaiting = "waiting"
	StatePlaying = "playing"
	StateEnded   = "ended"
)
