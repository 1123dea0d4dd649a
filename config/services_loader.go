package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ServiceEntry is one row of the static port->service table.
type ServiceEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// BannerSignature matches service greetings by textual prefix and an
// optional case-insensitive substring. Signatures are evaluated in
// order; the first match wins.
type BannerSignature struct {
	Prefix   string `yaml:"prefix,omitempty"`
	Contains string `yaml:"contains,omitempty"`
	Name     string `yaml:"name"`
}

// ServiceDB bundles the port table and the banner signatures.
type ServiceDB struct {
	Ports      map[int]ServiceEntry `yaml:"ports"`
	Signatures []BannerSignature    `yaml:"signatures"`
}

var (
	serviceDB     *ServiceDB
	serviceDBOnce sync.Once
)

// LoadServiceDB loads the service table from a YAML file. When the file
// is absent or malformed the compiled-in defaults are used, so service
// identification always has a table to work with.
func LoadServiceDB(path string) *ServiceDB {
	serviceDBOnce.Do(func() {
		serviceDB = defaultServiceDB()

		data, err := os.ReadFile(path)
		if err != nil {
			return
		}

		loaded := &ServiceDB{}
		if err := yaml.Unmarshal(data, loaded); err != nil {
			return
		}
		if len(loaded.Ports) > 0 {
			serviceDB.Ports = loaded.Ports
		}
		if len(loaded.Signatures) > 0 {
			serviceDB.Signatures = loaded.Signatures
		}
	})

	return serviceDB
}

// GetServiceDB returns the loaded service table, loading from the
// configured path on first use.
func GetServiceDB() *ServiceDB {
	if serviceDB == nil {
		return LoadServiceDB(GetConfig().Scanner.ServiceFile)
	}
	return serviceDB
}

// defaultServiceDB returns the compiled-in port table and signatures.
func defaultServiceDB() *ServiceDB {
	return &ServiceDB{
		Ports: map[int]ServiceEntry{
			20:    {Name: "FTP-Data", Description: "File Transfer Protocol (data)"},
			21:    {Name: "FTP", Description: "File Transfer Protocol"},
			22:    {Name: "SSH", Description: "Secure Shell"},
			23:    {Name: "Telnet", Description: "Telnet"},
			25:    {Name: "SMTP", Description: "Simple Mail Transfer Protocol"},
			53:    {Name: "DNS", Description: "Domain Name System"},
			80:    {Name: "HTTP", Description: "Hypertext Transfer Protocol"},
			110:   {Name: "POP3", Description: "Post Office Protocol v3"},
			111:   {Name: "RPCBind", Description: "ONC RPC portmapper"},
			135:   {Name: "MSRPC", Description: "Microsoft RPC"},
			139:   {Name: "NetBIOS-SSN", Description: "NetBIOS Session Service"},
			143:   {Name: "IMAP", Description: "Internet Message Access Protocol"},
			389:   {Name: "LDAP", Description: "Lightweight Directory Access Protocol"},
			443:   {Name: "HTTPS", Description: "HTTP Secure"},
			445:   {Name: "SMB", Description: "Microsoft Directory Services"},
			465:   {Name: "SMTPS", Description: "SMTP over TLS"},
			587:   {Name: "Submission", Description: "Mail message submission"},
			636:   {Name: "LDAPS", Description: "LDAP over TLS"},
			873:   {Name: "Rsync", Description: "rsync file synchronization"},
			993:   {Name: "IMAPS", Description: "IMAP over TLS"},
			995:   {Name: "POP3S", Description: "POP3 over TLS"},
			1080:  {Name: "SOCKS", Description: "SOCKS proxy"},
			1433:  {Name: "MSSQL", Description: "Microsoft SQL Server"},
			1521:  {Name: "Oracle", Description: "Oracle Database"},
			1883:  {Name: "MQTT", Description: "MQTT message broker"},
			2049:  {Name: "NFS", Description: "Network File System"},
			2375:  {Name: "Docker", Description: "Docker daemon API"},
			3000:  {Name: "HTTP-Dev", Description: "Common development HTTP port"},
			3306:  {Name: "MySQL", Description: "MySQL Database"},
			3389:  {Name: "RDP", Description: "Remote Desktop Protocol"},
			5432:  {Name: "PostgreSQL", Description: "PostgreSQL Database"},
			5672:  {Name: "AMQP", Description: "AMQP message broker"},
			5900:  {Name: "VNC", Description: "Virtual Network Computing"},
			5984:  {Name: "CouchDB", Description: "Apache CouchDB"},
			6379:  {Name: "Redis", Description: "Redis key-value store"},
			6443:  {Name: "Kubernetes", Description: "Kubernetes API server"},
			8000:  {Name: "HTTP-Alt", Description: "HTTP Alternate"},
			8080:  {Name: "HTTP-Proxy", Description: "HTTP Alternate / proxy"},
			8443:  {Name: "HTTPS-Alt", Description: "HTTPS Alternate"},
			8888:  {Name: "HTTP-Alt", Description: "HTTP Alternate"},
			9092:  {Name: "Kafka", Description: "Apache Kafka broker"},
			9200:  {Name: "Elasticsearch", Description: "Elasticsearch REST API"},
			11211: {Name: "Memcached", Description: "Memcached"},
			27017: {Name: "MongoDB", Description: "MongoDB Database"},
		},
		Signatures: []BannerSignature{
			{Prefix: "SSH-", Name: "SSH"},
			// "220 " opens both FTP and SMTP greetings; SMTP servers
			// identify themselves in the greeting text.
			{Prefix: "220 ", Contains: "smtp", Name: "SMTP"},
			{Prefix: "220 ", Contains: "ftp", Name: "FTP"},
			{Prefix: "220 ", Name: "FTP"},
			{Prefix: "HTTP/", Name: "HTTP"},
			{Prefix: "+OK", Name: "POP3"},
			{Prefix: "* OK", Name: "IMAP"},
			{Prefix: "RFB ", Name: "VNC"},
			{Contains: "mysql", Name: "MySQL"},
			{Contains: "<html", Name: "HTTP"},
		},
	}
}
