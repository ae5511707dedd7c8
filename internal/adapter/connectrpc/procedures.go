package connectrpc

const (
	AnswerServiceName  = "phrasedrill.v1.AnswerService"
	PhraseServiceName  = "phrasedrill.v1.PhraseService"
	SessionServiceName = "phrasedrill.v1.SessionService"
)

const (
	AnswerServiceCheckAnswerProcedure = "/" + AnswerServiceName + "/CheckAnswer"

	PhraseServiceCreatePhraseProcedure = "/" + PhraseServiceName + "/CreatePhrase"
	PhraseServiceGetPhraseProcedure    = "/" + PhraseServiceName + "/GetPhrase"
	PhraseServiceListPhrasesProcedure  = "/" + PhraseServiceName + "/ListPhrases"
	PhraseServiceDeletePhraseProcedure = "/" + PhraseServiceName + "/DeletePhrase"

	SessionServiceStartProcedure       = "/" + SessionServiceName + "/Start"
	SessionServiceGetProcedure         = "/" + SessionServiceName + "/Get"
	SessionServiceSetAnswerProcedure   = "/" + SessionServiceName + "/SetAnswer"
	SessionServiceSelectTokenProcedure = "/" + SessionServiceName + "/SelectToken"
	SessionServiceRemoveTokenProcedure = "/" + SessionServiceName + "/RemoveToken"
	SessionServiceCheckProcedure       = "/" + SessionServiceName + "/Check"
	SessionServiceConfirmProcedure     = "/" + SessionServiceName + "/Confirm"
	SessionServiceSkipProcedure        = "/" + SessionServiceName + "/Skip"
	SessionServiceNextProcedure        = "/" + SessionServiceName + "/Next"
	SessionServiceReopenProcedure      = "/" + SessionServiceName + "/Reopen"
	SessionServiceContinueProcedure    = "/" + SessionServiceName + "/Continue"
	SessionServiceFinishProcedure      = "/" + SessionServiceName + "/Finish"
)
