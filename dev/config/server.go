package config

const SERVER_YML = `
safeher:
  countdownSeconds: 5
  cron:
    timeZone: "Asia/Kolkata"
    locationRefreshSchedule: "*/5 * * * *"
  listener:
    port: 3000

sqlite:
  passPhrase: passphrase

location:
  endpoint: "https://ipapi.co/json/"
  timeoutSeconds: 7
  fallbackLat: 28.6139
  fallbackLng: 77.2090

voice:
  transcriptPath: ""
  triggerPhrase: "help me"

fakeCall:
  playerCommand: ""
  ringtoneURL: "https://www.soundjay.com/phone/sounds/phone-ring-01.mp3"
`
