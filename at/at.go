package at

const (
	// Terminal Control
	CR     = "\r"
	LF     = "\n"
	CRLF   = "\r\n"
	Prompt = "> "
	CtrlZ  = "\x1a"
	Esc    = "\x1b"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg        = "+CMTI:"
	UrcMessageReport = "+CDSI:"
	UrcCallerID      = "+CLIP:"
	UrcExtendedRing  = "+CRING:"
	UrcCall          = "RING"
)

// Basic commands
const (
	CmdAt           = "AT"
	CmdEchoOff      = "ATE0"
	CmdEchoOn       = "ATE1"
	CmdFactoryReset = "AT&F"
	CmdSimStatus    = "AT+CPIN?"
	CmdICCID        = "AT+CCID"
	CmdClock        = "AT+CCLK?"
)

// Parameter set pushed once the module is registered
const (
	CmdCallerID       = "AT+CLIP=1"
	CmdExtendedRing   = "AT+CRC=1"
	CmdNumericErrors  = "AT+CMEE=0"
	CmdSetTextMode    = "AT+CMGF=1"
	CmdPhonebookSIM   = `AT+CPBS="SM"`
	CmdSMSNotifyOff   = "AT+CNMI=2,0"
	CmdSMSStorageSIM  = `AT+CPMS="SM","SM"`
	CmdRegistration   = "AT+CREG?"
	CmdActivityStatus = "AT+CPAS"
	CmdListCalls      = "AT+CLCC"
	CmdAnswer         = "ATA"
	CmdHangUp         = "ATH"
)

// Bearer, HTTP and GPS commands
const (
	CmdBearerClose   = "AT+SAPBR=0,1"
	CmdBearerOpen    = "AT+SAPBR=1,1"
	CmdBearerQuery   = "AT+SAPBR=2,1"
	CmdBearerGPRS    = `AT+SAPBR=3,1,"CONTYPE","GPRS"`
	CmdHTTPInit      = "AT+HTTPINIT"
	CmdHTTPTerm      = "AT+HTTPTERM"
	CmdHTTPContextID = `AT+HTTPPARA="CID","1"`

	CmdGPSBaud      = "AT+CGPSIPR=9600"
	CmdGPSOutputOff = "AT+CGPSOUT=0"
	CmdGPSPowerOn   = "AT+CGPSPWR=1"
	CmdGPSPowerOff  = "AT+CGPSPWR=0"
	CmdGPSColdReset = "AT+CGPSRST=0"
	CmdGPSHotReset  = "AT+CGPSRST=1"
	CmdGPSStatus    = "AT+CGPSSTATUS?"
	CmdGPSInfo      = "AT+CGPSINF=0"
)

// Information responses matched by the feature state machines
const (
	SimReady = "+CPIN: READY"
	SimPin   = "+CPIN: SIM PIN"

	RegisteredHome    = "+CREG: 0,1"
	RegisteredRoaming = "+CREG: 0,5"

	ActivityReady   = "+CPAS: 0"
	ActivityRinging = "+CPAS: 3"
	ActivityInCall  = "+CPAS: 4"

	CallIncomingVoice  = "+CLCC: 1,1,4,0,0"
	CallIncomingData   = "+CLCC: 1,1,4,1,0"
	CallActiveVoiceOut = "+CLCC: 1,0,0,0,0"
	CallActiveVoiceIn  = "+CLCC: 1,1,0,0,0"
	CallActiveData     = "+CLCC: 1,1,0,1,0"
	CallList           = "+CLCC:"

	SMSList      = "+CMGL:"
	SMSRead      = "+CMGR"
	SMSSent      = "+CMGS"
	SMSStorage   = "+CPMS:"
	StatusUnread = `"REC UNREAD"`
	StatusRead   = `"REC READ"`
	StatusAll    = `"ALL"`

	PhonebookRead = "+CPBR"
	ClockRead     = "+CCLK"

	BearerConnected  = "+SAPBR: 1,1"
	HTTPActionReport = "+HTTPACTION:"
	HTTPRead         = "+HTTPREAD:"

	GPSStatus     = "+CGPSSTATUS:"
	GPSFix2D      = "Location 2D Fix"
	GPSFix3D      = "Location 3D Fix"
	GPSNotFix     = "Location Not Fix"
	GPSFixUnknown = "Location Unknown"
	GPSInfo       = "+CGPSINF:"

	// PromptMark is Prompt without the trailing space, which some
	// firmwares omit.
	PromptMark = ">"
	// OKLine is the final result line terminating a call listing.
	OKLine = OK + CRLF
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // SMS input prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
