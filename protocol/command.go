package protocol

type Command string

const (
	SEND    Command = "SEND"
	RECEIVE Command = "RECEIVE"
)

type ResponseType string

const (
	RespOk      ResponseType = "OK"
	RespErr     ResponseType = "ERROR"
	RespMessage ResponseType = "MESSAGE"
)
