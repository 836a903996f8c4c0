package relay

//go:generate mockgen -destination=./mocks/relay_mock.go -package=mocks github.com/iov-one/weave-editions/x/events/relay Source,Sender
